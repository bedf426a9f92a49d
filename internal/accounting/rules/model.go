package rules

import (
	"time"

	"github.com/dentex-erp/dentex-erp/internal/accounting/accounts"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

// Rule maps a (company, document type) pair to the accounts a posting debits
// and credits. Unique per (company, doc type); there is no fallback rule.
type Rule struct {
	ID            int64
	CompanyID     int64
	DocType       shared.DocType
	DebitAccount  accounts.Account
	CreditAccount accounts.Account
	TaxAccount    *accounts.Account
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UpsertInput carries the account ids for creating or replacing a rule.
type UpsertInput struct {
	CompanyID       int64          `json:"company_id" validate:"required"`
	DocType         shared.DocType `json:"doc_type" validate:"required"`
	DebitAccountID  int64          `json:"debit_account_id" validate:"required"`
	CreditAccountID int64          `json:"credit_account_id" validate:"required"`
	TaxAccountID    *int64         `json:"tax_account_id"`
}
