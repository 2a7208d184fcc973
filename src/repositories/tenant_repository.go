package repositories

import (
	"context"
	"time"

	"analytics-sync/src/models"
	"analytics-sync/src/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TenantRepository enumerates the scopes to sync and records run start and
// completion per scope in the control registry. At most one run per scope
// may be in flight; completion closes the most recently started open row.
type TenantRepository interface {
	GetActiveEnvironments(ctx context.Context) ([]models.TenantEnvironment, error)
	LogSyncStart(ctx context.Context, tenantID, environmentID uuid.UUID) error
	LogSyncComplete(ctx context.Context, tenantID, environmentID uuid.UUID, recordsSynced int, status string, syncErr error) error
}

type tenantRepo struct {
	DB *pgxpool.Pool
}

func NewTenantRepository(db *pgxpool.Pool) TenantRepository {
	return &tenantRepo{DB: db}
}

// GetActiveEnvironments returns the scopes whose tenant and environment are
// both flagged active, joining environment metadata with the tenant's
// database coordinates.
func (r *tenantRepo) GetActiveEnvironments(ctx context.Context) ([]models.TenantEnvironment, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT
			te.environment_id,
			te.tenant_id,
			t.database_server,
			t.database_name,
			te.environment_name,
			te.bc_tenant_id,
			te.company_id,
			te.company_name,
			te.client_id
		FROM control.tenant_environments te
		INNER JOIN control.tenants t ON te.tenant_id = t.tenant_id
		WHERE t.is_active AND te.is_active
	`)
	if err != nil {
		return nil, utils.NewStoreError("list active environments", err)
	}
	defer rows.Close()

	var environments []models.TenantEnvironment
	for rows.Next() {
		var env models.TenantEnvironment
		if err := rows.Scan(
			&env.EnvironmentID,
			&env.TenantID,
			&env.DatabaseServer,
			&env.DatabaseName,
			&env.EnvironmentName,
			&env.BCTenantID,
			&env.CompanyID,
			&env.CompanyName,
			&env.ClientID,
		); err != nil {
			return nil, utils.NewStoreError("scan tenant environment", err)
		}
		environments = append(environments, env)
	}

	if err := rows.Err(); err != nil {
		return nil, utils.NewStoreError("list active environments", err)
	}

	return environments, nil
}

func (r *tenantRepo) LogSyncStart(ctx context.Context, tenantID, environmentID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO control.sync_history (tenant_id, environment_id, sync_started, status)
		VALUES ($1, $2, $3, $4)
	`, tenantID, environmentID, time.Now().UTC(), models.StatusInProgress)
	if err != nil {
		return utils.NewStoreError("log sync start", err)
	}
	return nil
}

func (r *tenantRepo) LogSyncComplete(ctx context.Context, tenantID, environmentID uuid.UUID, recordsSynced int, status string, syncErr error) error {
	var errorMessage *string
	if syncErr != nil {
		msg := syncErr.Error()
		errorMessage = &msg
	}

	_, err := r.DB.Exec(ctx, `
		UPDATE control.sync_history
		SET sync_completed = $1,
			records_synced = $2,
			status = $3,
			error_message = $4
		WHERE id = (
			SELECT id FROM control.sync_history
			WHERE tenant_id = $5 AND environment_id = $6 AND sync_completed IS NULL
			ORDER BY sync_started DESC
			LIMIT 1
		)
	`, time.Now().UTC(), recordsSynced, status, errorMessage, tenantID, environmentID)
	if err != nil {
		return utils.NewStoreError("log sync complete", err)
	}
	return nil
}
