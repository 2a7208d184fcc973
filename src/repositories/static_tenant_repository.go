package repositories

import (
	"context"

	"analytics-sync/src/config"
	"analytics-sync/src/models"
	"analytics-sync/src/utils"

	"github.com/google/uuid"
)

// staticTenantRepo serves single-tenant mode: the one scope comes from
// configuration and there is no control registry to record run history in.
type staticTenantRepo struct {
	env models.TenantEnvironment
}

// NewStaticTenantRepository builds a directory over the fixed scope
// described in configuration.
func NewStaticTenantRepository(cfg *config.Config) (TenantRepository, error) {
	st := cfg.SingleTenant

	bcTenantID, err := uuid.Parse(st.BCTenantID)
	if err != nil {
		return nil, utils.NewConfigError("singleTenant.bcTenantId is not a valid UUID: %v", err)
	}
	clientID, err := uuid.Parse(st.ClientID)
	if err != nil {
		return nil, utils.NewConfigError("singleTenant.clientId is not a valid UUID: %v", err)
	}
	companyID, err := uuid.Parse(st.CompanyID)
	if err != nil {
		return nil, utils.NewConfigError("singleTenant.companyId is not a valid UUID: %v", err)
	}

	return &staticTenantRepo{
		env: models.TenantEnvironment{
			EnvironmentName: st.EnvironmentName,
			BCTenantID:      bcTenantID,
			CompanyID:       companyID,
			CompanyName:     st.CompanyName,
			ClientID:        clientID,
		},
	}, nil
}

func (r *staticTenantRepo) GetActiveEnvironments(_ context.Context) ([]models.TenantEnvironment, error) {
	return []models.TenantEnvironment{r.env}, nil
}

func (r *staticTenantRepo) LogSyncStart(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (r *staticTenantRepo) LogSyncComplete(_ context.Context, _, _ uuid.UUID, _ int, _ string, _ error) error {
	return nil
}
