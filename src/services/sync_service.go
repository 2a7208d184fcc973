package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"analytics-sync/src/clients/auth"
	"analytics-sync/src/clients/bc"
	"analytics-sync/src/config"
	"analytics-sync/src/database"
	"analytics-sync/src/models"
	"analytics-sync/src/repositories"
	"analytics-sync/src/utils"
)

type SyncServiceI interface {
	RunAll(ctx context.Context) error
}

// ErrRunInProgress is returned when a run is triggered while the previous
// one has not finished. At most one run may be in flight at a time; the
// open-row bookkeeping in the control registry depends on it.
var ErrRunInProgress = errors.New("sync run already in progress")

// SyncService drives one full sync run: it enumerates the active scopes and,
// for each, runs the four entity syncs sequentially against that scope's
// destination store. Scopes are processed strictly sequentially and one
// scope's failure never blocks the others.
type SyncService struct {
	cfg      *config.Config
	tenants  repositories.TenantRepository
	tokens   auth.TokenProviderI
	bcClient bc.BCServiceClientI
	stores   repositories.StoreOpener

	resolveConn func(env models.TenantEnvironment) models.ConnectionDescriptor
	running     sync.Mutex
}

func NewSyncService(
	cfg *config.Config,
	tenants repositories.TenantRepository,
	tokens auth.TokenProviderI,
	bcClient bc.BCServiceClientI,
	stores repositories.StoreOpener,
) *SyncService {
	return &SyncService{
		cfg:      cfg,
		tenants:  tenants,
		tokens:   tokens,
		bcClient: bcClient,
		stores:   stores,
		resolveConn: func(env models.TenantEnvironment) models.ConnectionDescriptor {
			return database.ResolveScopeDescriptor(cfg, env)
		},
	}
}

// RunAll executes one scheduled run across every active scope. Errors inside
// a scope are recorded against that scope and the run moves on; only a
// failure to enumerate scopes aborts the run itself.
func (s *SyncService) RunAll(ctx context.Context) error {
	if !s.running.TryLock() {
		return ErrRunInProgress
	}
	defer s.running.Unlock()

	logger := utils.LoggerFromContext(ctx)
	logger.WithField("time", time.Now().UTC()).Info("Sync started")

	environments, err := s.tenants.GetActiveEnvironments(ctx)
	if err != nil {
		return err
	}
	logger.WithField("count", len(environments)).Info("Found active environments to sync")

	for _, env := range environments {
		scopeLogger := logger.WithField("company", env.CompanyName).WithField("environment", env.EnvironmentName)
		scopeLogger.Info("Syncing scope")

		if err := s.tenants.LogSyncStart(ctx, env.TenantID, env.EnvironmentID); err != nil {
			scopeLogger.WithError(err).Error("Could not record sync start, skipping scope")
			continue
		}

		total, runErr := s.syncScope(ctx, env)

		status := models.StatusSuccess
		if runErr != nil {
			status = models.StatusFailed
			scopeLogger.WithError(runErr).Error("Sync failed for scope")
		} else {
			scopeLogger.WithField("records", total).Info("Completed sync for scope")
		}

		if err := s.tenants.LogSyncComplete(ctx, env.TenantID, env.EnvironmentID, total, status, runErr); err != nil {
			scopeLogger.WithError(err).Error("Could not record sync completion")
		}
	}

	logger.WithField("time", time.Now().UTC()).Info("Sync completed")
	return nil
}

// syncScope opens the scope's destination store and runs the four entity
// syncs in a fixed order. Under the fail-fast strategy the first entity
// error aborts the scope with the partial total; under fail-isolated the
// error is recorded in the sync log and the remaining entities still run.
func (s *SyncService) syncScope(ctx context.Context, env models.TenantEnvironment) (int, error) {
	store, err := s.stores.Open(ctx, s.resolveConn(env))
	if err != nil {
		return 0, utils.NewStoreError("open destination store", err)
	}
	defer store.Close()

	entitySyncs := []struct {
		name string
		run  func() (int, error)
	}{
		{"GL Accounts", func() (int, error) {
			return syncEntity(ctx, s, env, store, "GL Accounts", models.TableGLAccounts,
				s.bcClient.GetGLAccounts, store.UpsertGLAccounts)
		}},
		{"GL Entries", func() (int, error) {
			return syncEntity(ctx, s, env, store, "GL Entries", models.TableGLEntries,
				s.bcClient.GetGLEntries, store.UpsertGLEntries)
		}},
		{"Dimension Set Entries", func() (int, error) {
			return syncEntity(ctx, s, env, store, "Dimension Set Entries", models.TableDimensionEntries,
				s.bcClient.GetDimensionSetEntries, store.UpsertDimensionSetEntries)
		}},
		{"GL Budget Entries", func() (int, error) {
			return syncEntity(ctx, s, env, store, "GL Budget Entries", models.TableGLBudgetEntries,
				s.bcClient.GetGLBudgetEntries, store.UpsertGLBudgetEntries)
		}},
	}

	logger := utils.LoggerFromContext(ctx)
	total := 0
	for _, entity := range entitySyncs {
		count, err := entity.run()
		total += count
		if err != nil {
			logger.WithError(err).Errorf("%s sync failed", entity.name)
			if s.cfg.Sync.Strategy == config.StrategyFailFast {
				return total, err
			}
		}
	}
	return total, nil
}

// syncEntity is one watermark-fetch-upsert cycle for a single entity kind.
// Any error is recorded in the scope's sync log row for the table before it
// is returned; an empty fetch writes a success row with zero records and
// never touches the loader.
func syncEntity[T any](
	ctx context.Context,
	s *SyncService,
	env models.TenantEnvironment,
	store repositories.Store,
	name string,
	tableName string,
	fetch func(ctx context.Context, token string, env models.TenantEnvironment, since time.Time) ([]T, error),
	upsert func(ctx context.Context, scope models.Scope, records []T) error,
) (int, error) {
	logger := utils.LoggerFromContext(ctx)
	logger.Infof("Syncing %s...", name)

	scope := env.Scope()

	lastSync, err := store.GetLastSync(ctx, scope, tableName)
	if err != nil {
		recordFailure(ctx, store, scope, tableName, err)
		return 0, err
	}

	token, err := s.tokens.GetToken(ctx, env.BCTenantID, env.ClientID)
	if err != nil {
		recordFailure(ctx, store, scope, tableName, err)
		return 0, err
	}

	records, err := fetch(ctx, token, env, lastSync)
	if err != nil {
		recordFailure(ctx, store, scope, tableName, err)
		return 0, err
	}

	if len(records) == 0 {
		logger.Infof("No new %s to sync", name)
		if err := store.UpdateSyncLog(ctx, scope, tableName, 0, models.StatusSuccess, nil); err != nil {
			return 0, err
		}
		return 0, nil
	}

	if err := upsert(ctx, scope, records); err != nil {
		recordFailure(ctx, store, scope, tableName, err)
		return 0, err
	}

	if err := store.UpdateSyncLog(ctx, scope, tableName, len(records), models.StatusSuccess, nil); err != nil {
		return len(records), err
	}

	logger.Infof("%s sync complete: %d records", name, len(records))
	return len(records), nil
}

// recordFailure writes the failed attempt into the sync log. Best effort:
// if the log write itself fails there is nothing left to record it in.
func recordFailure(ctx context.Context, store repositories.Store, scope models.Scope, tableName string, syncErr error) {
	if err := store.UpdateSyncLog(ctx, scope, tableName, 0, models.StatusFailed, syncErr); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Error("Could not record sync failure")
	}
}
