package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The four record kinds replicated from the source ledger API. Each carries
// SystemId, a globally unique identifier assigned by the source system, used
// as the merge identity key, and LastModifiedDateTime, the incremental-sync
// watermark field.

type GLAccount struct {
	SystemID                  uuid.UUID `json:"systemId" db:"system_id"`
	No                        string    `json:"no" db:"account_no"`
	Name                      string    `json:"name" db:"name"`
	AccountType               string    `json:"accountType" db:"account_type"`
	AccountCategory           string    `json:"accountCategory" db:"account_category"`
	AccountSubcategory        string    `json:"accountSubcategory" db:"account_subcategory"`
	AccountSubcategoryEntryNo int       `json:"accountSubcategoryEntryNo" db:"account_subcategory_entry_no"`
	IncomeBalance             string    `json:"incomeBalance" db:"income_balance"`
	Indentation               int       `json:"indentation" db:"indentation"`
	Blocked                   bool      `json:"blocked" db:"blocked"`
	LastModifiedDateTime      time.Time `json:"lastModifiedDateTime" db:"last_modified_date_time"`
}

type GLEntry struct {
	SystemID             uuid.UUID       `json:"systemId" db:"system_id"`
	EntryNo              int             `json:"entryNo" db:"entry_no"`
	GLAccountNo          string          `json:"glAccountNo" db:"gl_account_no"`
	PostingDate          time.Time       `json:"postingDate" db:"posting_date"`
	DocumentType         string          `json:"documentType" db:"document_type"`
	DocumentNo           string          `json:"documentNo" db:"document_no"`
	Description          string          `json:"description" db:"description"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	DebitAmount          decimal.Decimal `json:"debitAmount" db:"debit_amount"`
	CreditAmount         decimal.Decimal `json:"creditAmount" db:"credit_amount"`
	DimensionSetID       int             `json:"dimensionSetId" db:"dimension_set_id"`
	LastModifiedDateTime time.Time       `json:"lastModifiedDateTime" db:"last_modified_date_time"`
}

type DimensionSetEntry struct {
	SystemID             uuid.UUID `json:"systemId" db:"system_id"`
	DimensionSetID       int       `json:"dimensionSetId" db:"dimension_set_id"`
	DimensionCode        string    `json:"dimensionCode" db:"dimension_code"`
	DimensionValueCode   string    `json:"dimensionValueCode" db:"dimension_value_code"`
	DimensionValueName   string    `json:"dimensionValueName" db:"dimension_value_name"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime" db:"last_modified_date_time"`
}

type GLBudgetEntry struct {
	SystemID             uuid.UUID       `json:"systemId" db:"system_id"`
	EntryNo              int             `json:"entryNo" db:"entry_no"`
	BudgetName           string          `json:"budgetName" db:"budget_name"`
	GLAccountNo          string          `json:"glAccountNo" db:"gl_account_no"`
	Date                 time.Time       `json:"date" db:"entry_date"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	Description          string          `json:"description" db:"description"`
	DimensionSetID       int             `json:"dimensionSetId" db:"dimension_set_id"`
	LastModifiedDateTime time.Time       `json:"lastModifiedDateTime" db:"last_modified_date_time"`
}

// Destination table names, also the sync-log keys.
const (
	TableGLAccounts       = "dim_account"
	TableGLEntries        = "fact_gl"
	TableDimensionEntries = "dim_dimension"
	TableGLBudgetEntries  = "fact_budget"
)
