package repositories

import (
	"context"
	"testing"

	"analytics-sync/src/config"
	"analytics-sync/src/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleTenantConfig() *config.Config {
	return &config.Config{
		SingleTenant: config.SingleTenantConfig{
			BCTenantID:      "11111111-1111-1111-1111-111111111111",
			ClientID:        "22222222-2222-2222-2222-222222222222",
			EnvironmentName: "production",
			CompanyID:       "33333333-3333-3333-3333-333333333333",
			CompanyName:     "Cronus",
		},
	}
}

func TestStaticTenantRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("serves the one configured scope", func(t *testing.T) {
		repo, err := NewStaticTenantRepository(singleTenantConfig())
		require.NoError(t, err)

		environments, err := repo.GetActiveEnvironments(ctx)
		require.NoError(t, err)
		require.Len(t, environments, 1)

		env := environments[0]
		assert.Equal(t, "production", env.EnvironmentName)
		assert.Equal(t, "Cronus", env.CompanyName)
		assert.Equal(t, uuid.MustParse("11111111-1111-1111-1111-111111111111"), env.BCTenantID)
		assert.Equal(t, uuid.MustParse("33333333-3333-3333-3333-333333333333"), env.CompanyID)
	})

	t.Run("run bookkeeping is a no-op", func(t *testing.T) {
		repo, err := NewStaticTenantRepository(singleTenantConfig())
		require.NoError(t, err)

		assert.NoError(t, repo.LogSyncStart(ctx, uuid.New(), uuid.New()))
		assert.NoError(t, repo.LogSyncComplete(ctx, uuid.New(), uuid.New(), 0, "Success", nil))
	})

	t.Run("rejects a malformed scope id", func(t *testing.T) {
		cfg := singleTenantConfig()
		cfg.SingleTenant.CompanyID = "not-a-uuid"

		_, err := NewStaticTenantRepository(cfg)
		require.Error(t, err)
		var cfgErr *utils.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})
}
