package models

import (
	"time"

	"github.com/google/uuid"
)

// Sync outcome states.
const (
	StatusInProgress = "InProgress"
	StatusSuccess    = "Success"
	StatusFailed     = "Failed"
)

// SyncLog is the single upserted row per (environment, table) holding the
// watermark and the outcome of the most recent attempt. Prior attempts are
// not retained.
type SyncLog struct {
	EnvironmentName  string    `db:"environment_name"`
	TableName        string    `db:"table_name"`
	LastSyncDateTime time.Time `db:"last_sync_date_time"`
	RowsSynced       int       `db:"rows_synced"`
	SyncStatus       string    `db:"sync_status"`
	LastError        *string   `db:"last_error"`
}

// SyncHistory is one row per sync run per scope. SyncCompleted stays null
// while the run is in flight; completion closes the most recently started
// open row.
type SyncHistory struct {
	ID            int        `db:"id"`
	TenantID      uuid.UUID  `db:"tenant_id"`
	EnvironmentID uuid.UUID  `db:"environment_id"`
	SyncStarted   time.Time  `db:"sync_started"`
	SyncCompleted *time.Time `db:"sync_completed"`
	RecordsSynced int        `db:"records_synced"`
	Status        string     `db:"status"`
	ErrorMessage  *string    `db:"error_message"`
}
