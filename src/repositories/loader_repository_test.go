package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeQuery(t *testing.T) {
	t.Run("updates every non-key column on conflict", func(t *testing.T) {
		columns := []string{"environment_name", "company_id", "system_id", "name", "blocked"}
		query := mergeQuery("dim_account", "staging_dim_account", columns)

		assert.Contains(t, query, "INSERT INTO analytics.dim_account (environment_name, company_id, system_id, name, blocked)")
		assert.Contains(t, query, "SELECT environment_name, company_id, system_id, name, blocked FROM staging_dim_account")
		assert.Contains(t, query, "ON CONFLICT (environment_name, company_id, system_id)")
		assert.Contains(t, query, "DO UPDATE SET name = EXCLUDED.name, blocked = EXCLUDED.blocked")
	})

	t.Run("never updates the identity key columns", func(t *testing.T) {
		columns := []string{"environment_name", "company_id", "system_id", "amount"}
		query := mergeQuery("fact_gl", "staging_fact_gl", columns)

		assert.NotContains(t, query, "system_id = EXCLUDED")
		assert.NotContains(t, query, "environment_name = EXCLUDED")
		assert.NotContains(t, query, "company_id = EXCLUDED")
		assert.Contains(t, query, "amount = EXCLUDED.amount")
	})
}
