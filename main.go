package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"analytics-sync/src/clients/auth"
	"analytics-sync/src/clients/bc"
	"analytics-sync/src/config"
	"analytics-sync/src/database"
	"analytics-sync/src/repositories"
	"analytics-sync/src/scheduler"
	"analytics-sync/src/services"
	"analytics-sync/src/utils"
	aws_handler "analytics-sync/src/utils/aws"
	"analytics-sync/src/worker"
)

func main() {
	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}
	errC, err := run(cfg)
	if err != nil {
		log.Println(err, "Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		log.Println(err, "Error while running")
	}
}

func run(cfg *config.Config) (<-chan error, error) {
	errC := make(chan error, 1)

	logger := utils.NewLogger(cfg.Service.LogLevel)
	ctx := utils.WithLogger(context.Background(), logger)

	clientSecret, err := resolveClientSecret(cfg)
	if err != nil {
		return nil, err
	}

	var tenants repositories.TenantRepository
	if cfg.MultiTenant() {
		controlDB, err := database.SetupDB(cfg.Databases.Control.ConnectionString)
		if err != nil {
			return nil, err
		}
		tenants = repositories.NewTenantRepository(controlDB)
	} else {
		tenants, err = repositories.NewStaticTenantRepository(cfg)
		if err != nil {
			return nil, err
		}
	}

	syncService := services.NewSyncService(
		cfg,
		tenants,
		auth.NewTokenProvider(cfg, clientSecret),
		bc.NewClient(cfg),
		repositories.NewStoreOpener(),
	)

	task, err := scheduler.NewScheduledTask(cfg.Sync.Schedule, func() {
		if err := syncService.RunAll(ctx); err != nil {
			if errors.Is(err, services.ErrRunInProgress) {
				logger.Warn("Scheduled sync skipped, previous run still in progress")
				return
			}
			logger.WithError(err).Error("Scheduled sync run failed")
		}
	})
	if err != nil {
		return nil, err
	}

	httpServer := worker.NewHTTPServer(worker.NewServer(syncService, logger), cfg.Service.Port)

	go func() {
		logger.WithField("port", cfg.Service.Port).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or
		// Close, the returned error is ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			task.Cancel()
			errC <- err
		}
	}()
	return errC, nil
}

// resolveClientSecret prefers the environment, falling back to AWS Secrets
// Manager when a secret id is configured instead.
func resolveClientSecret(cfg *config.Config) (string, error) {
	if cfg.ExternalClients.AzureAD.ClientSecret != "" {
		return cfg.ExternalClients.AzureAD.ClientSecret, nil
	}

	awsHandler, err := aws_handler.NewAWSHandler(cfg.AWS.Region)
	if err != nil {
		return "", err
	}
	return awsHandler.SecretManager.GetSecretValue(cfg.AWS.ClientSecretID)
}
