package repositories

import (
	"context"
	"errors"
	"time"

	"analytics-sync/src/models"
	"analytics-sync/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SyncLogRepository tracks, per (environment, table), the watermark of the
// most recent successful sync and the outcome of the last attempt.
type SyncLogRepository interface {
	GetLastSync(ctx context.Context, scope models.Scope, tableName string) (time.Time, error)
	UpdateSyncLog(ctx context.Context, scope models.Scope, tableName string, rowsSynced int, status string, syncErr error) error
}

type syncLogRepo struct {
	DB *pgxpool.Pool
}

func NewSyncLogRepository(db *pgxpool.Pool) SyncLogRepository {
	return &syncLogRepo{DB: db}
}

// GetLastSync returns the stored watermark, or the epoch sentinel when no
// row exists yet, which signals a full unfiltered fetch to the caller.
func (r *syncLogRepo) GetLastSync(ctx context.Context, scope models.Scope, tableName string) (time.Time, error) {
	var lastSync time.Time
	err := r.DB.QueryRow(ctx, `
		SELECT last_sync_date_time
		FROM analytics.sync_log
		WHERE environment_name = $1 AND table_name = $2
	`, scope.EnvironmentName, tableName).Scan(&lastSync)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return utils.SyncEpoch, nil
		}
		return time.Time{}, utils.NewStoreError("get last sync", err)
	}
	return lastSync, nil
}

// UpdateSyncLog upserts the single row for (environment, table). The
// watermark advances only on success; a failed attempt keeps the previous
// one so no modification window is ever skipped.
func (r *syncLogRepo) UpdateSyncLog(ctx context.Context, scope models.Scope, tableName string, rowsSynced int, status string, syncErr error) error {
	var lastError *string
	if syncErr != nil {
		msg := syncErr.Error()
		lastError = &msg
	}

	lastSync := utils.SyncEpoch
	if status == models.StatusSuccess {
		lastSync = time.Now().UTC()
	}

	_, err := r.DB.Exec(ctx, `
		INSERT INTO analytics.sync_log (environment_name, table_name, last_sync_date_time, rows_synced, sync_status, last_error)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (environment_name, table_name) DO UPDATE SET
			last_sync_date_time = CASE WHEN EXCLUDED.sync_status = 'Success'
				THEN EXCLUDED.last_sync_date_time
				ELSE analytics.sync_log.last_sync_date_time END,
			rows_synced = EXCLUDED.rows_synced,
			sync_status = EXCLUDED.sync_status,
			last_error = EXCLUDED.last_error
	`, scope.EnvironmentName, tableName, lastSync, rowsSynced, status, lastError)
	if err != nil {
		return utils.NewStoreError("update sync log", err)
	}
	return nil
}
