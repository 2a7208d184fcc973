package database

import (
	"context"
	"fmt"

	"analytics-sync/src/config"
	"analytics-sync/src/models"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupDB opens a pool from a raw DSN (control registry, migrations).
func SetupDB(dsn string) (*pgxpool.Pool, error) {
	return newPool(dsn)
}

// SetupScopeDB opens a pool for one scope's destination database from its
// resolved connection descriptor.
func SetupScopeDB(desc models.ConnectionDescriptor) (*pgxpool.Pool, error) {
	return newPool(desc.DSN())
}

func newPool(dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1

	// Money columns are numeric; register the decimal codec so amounts
	// round-trip without precision loss.
	poolConfig.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}
	return pool, nil
}

// ResolveScopeDescriptor combines the control registry's per-scope server
// and database fields with the configured credentials into one immutable
// connection descriptor.
func ResolveScopeDescriptor(cfg *config.Config, env models.TenantEnvironment) models.ConnectionDescriptor {
	sql := cfg.Databases.SQL

	if cfg.MultiTenant() {
		port := sql.Port
		if port == "" {
			port = "5432"
		}
		return models.ConnectionDescriptor{
			Host:     env.DatabaseServer,
			Port:     port,
			Database: env.DatabaseName,
			Username: sql.Username,
			Password: sql.Password,
			SSLMode:  sql.SSLMode,
		}
	}

	return models.ConnectionDescriptor{
		Host:       sql.Host,
		Port:       sql.Port,
		Database:   sql.Database,
		Username:   sql.Username,
		Password:   sql.Password,
		SSLMode:    sql.SSLMode,
		ConnString: sql.ConnectionString,
	}
}
