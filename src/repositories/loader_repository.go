package repositories

import (
	"context"
	"fmt"
	"strings"

	"analytics-sync/src/models"
	"analytics-sync/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoaderRepository bulk-upserts one batch of records for one entity kind
// into the destination store. Each call stages the batch into an ephemeral
// table, bulk-loads it in one operation, then applies a single set-based
// merge: rows whose identity key already exists are updated in place, the
// rest are inserted. The whole batch is applied atomically or not at all,
// so retries can never duplicate or lose rows. Source-side deletions are
// never propagated.
type LoaderRepository interface {
	UpsertGLAccounts(ctx context.Context, scope models.Scope, accounts []models.GLAccount) error
	UpsertGLEntries(ctx context.Context, scope models.Scope, entries []models.GLEntry) error
	UpsertDimensionSetEntries(ctx context.Context, scope models.Scope, dimensions []models.DimensionSetEntry) error
	UpsertGLBudgetEntries(ctx context.Context, scope models.Scope, budgetEntries []models.GLBudgetEntry) error
}

type loaderRepo struct {
	DB *pgxpool.Pool
}

func NewLoaderRepository(db *pgxpool.Pool) LoaderRepository {
	return &loaderRepo{DB: db}
}

// conflictKey matches destination rows to source records. environment_name
// and company_id are zero-valued in single-tenant destinations, so the key
// degenerates to system_id there.
var conflictKey = []string{"environment_name", "company_id", "system_id"}

func (r *loaderRepo) UpsertGLAccounts(ctx context.Context, scope models.Scope, accounts []models.GLAccount) error {
	columns := []string{
		"environment_name", "company_id", "system_id",
		"account_no", "name", "account_type", "account_category",
		"account_subcategory", "account_subcategory_entry_no",
		"income_balance", "indentation", "blocked", "last_modified_date_time",
	}
	rows := make([][]interface{}, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []interface{}{
			scope.EnvironmentName, scope.CompanyID, a.SystemID,
			a.No, a.Name, a.AccountType, a.AccountCategory,
			a.AccountSubcategory, a.AccountSubcategoryEntryNo,
			a.IncomeBalance, a.Indentation, a.Blocked, a.LastModifiedDateTime,
		})
	}
	return r.stageAndMerge(ctx, models.TableGLAccounts, columns, rows)
}

func (r *loaderRepo) UpsertGLEntries(ctx context.Context, scope models.Scope, entries []models.GLEntry) error {
	columns := []string{
		"environment_name", "company_id", "system_id",
		"entry_no", "gl_account_no", "posting_date", "document_type",
		"document_no", "description", "amount", "debit_amount",
		"credit_amount", "dimension_set_id", "last_modified_date_time",
	}
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{
			scope.EnvironmentName, scope.CompanyID, e.SystemID,
			e.EntryNo, e.GLAccountNo, e.PostingDate, e.DocumentType,
			e.DocumentNo, e.Description, e.Amount, e.DebitAmount,
			e.CreditAmount, e.DimensionSetID, e.LastModifiedDateTime,
		})
	}
	return r.stageAndMerge(ctx, models.TableGLEntries, columns, rows)
}

func (r *loaderRepo) UpsertDimensionSetEntries(ctx context.Context, scope models.Scope, dimensions []models.DimensionSetEntry) error {
	columns := []string{
		"environment_name", "company_id", "system_id",
		"dimension_set_id", "dimension_code", "dimension_value_code",
		"dimension_value_name", "last_modified_date_time",
	}
	rows := make([][]interface{}, 0, len(dimensions))
	for _, d := range dimensions {
		rows = append(rows, []interface{}{
			scope.EnvironmentName, scope.CompanyID, d.SystemID,
			d.DimensionSetID, d.DimensionCode, d.DimensionValueCode,
			d.DimensionValueName, d.LastModifiedDateTime,
		})
	}
	return r.stageAndMerge(ctx, models.TableDimensionEntries, columns, rows)
}

func (r *loaderRepo) UpsertGLBudgetEntries(ctx context.Context, scope models.Scope, budgetEntries []models.GLBudgetEntry) error {
	columns := []string{
		"environment_name", "company_id", "system_id",
		"entry_no", "budget_name", "gl_account_no", "entry_date",
		"amount", "description", "dimension_set_id", "last_modified_date_time",
	}
	rows := make([][]interface{}, 0, len(budgetEntries))
	for _, b := range budgetEntries {
		rows = append(rows, []interface{}{
			scope.EnvironmentName, scope.CompanyID, b.SystemID,
			b.EntryNo, b.BudgetName, b.GLAccountNo, b.Date,
			b.Amount, b.Description, b.DimensionSetID, b.LastModifiedDateTime,
		})
	}
	return r.stageAndMerge(ctx, models.TableGLBudgetEntries, columns, rows)
}

// stageAndMerge runs the staging-table-plus-merge pattern for one batch
// inside a single transaction: create an ephemeral staging table scoped to
// the transaction, bulk-load the batch with COPY, then merge into the
// destination in one set-based statement. The temp table is dropped on
// commit, so concurrent scopes on distinct connections cannot collide.
func (r *loaderRepo) stageAndMerge(ctx context.Context, table string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return utils.NewStoreError("begin upsert "+table, err)
	}
	defer tx.Rollback(ctx)

	staging := "staging_" + table
	_, err = tx.Exec(ctx, fmt.Sprintf(
		`CREATE TEMP TABLE %s (LIKE analytics.%s INCLUDING DEFAULTS) ON COMMIT DROP`,
		staging, table))
	if err != nil {
		return utils.NewStoreError("create staging table for "+table, err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{staging}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return utils.NewStoreError("bulk load staging for "+table, err)
	}

	_, err = tx.Exec(ctx, mergeQuery(table, staging, columns))
	if err != nil {
		return utils.NewStoreError("merge "+table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return utils.NewStoreError("commit upsert "+table, err)
	}
	return nil
}

// mergeQuery builds the set-based upsert from staging into the destination:
// insert every staged row, and on identity-key conflict overwrite all
// non-key attributes with the staged values.
func mergeQuery(table, staging string, columns []string) string {
	key := map[string]bool{}
	for _, k := range conflictKey {
		key[k] = true
	}

	var updates []string
	for _, col := range columns {
		if key[col] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	colList := strings.Join(columns, ", ")
	return fmt.Sprintf(`
		INSERT INTO analytics.%s (%s)
		SELECT %s FROM %s
		ON CONFLICT (%s) DO UPDATE SET %s`,
		table, colList, colList, staging,
		strings.Join(conflictKey, ", "), strings.Join(updates, ", "))
}
