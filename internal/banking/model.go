package banking

import "time"

// FinancialAccount is a bank or credit facility a company settles documents
// through. LedgerAccountID links it to the chart of accounts; when unset the
// posting engine falls back to a default code derived from AccountType.
type FinancialAccount struct {
	ID              int64
	CompanyID       int64
	Name            string
	AccountType     string // checking, savings, credit_card, line_of_credit
	LedgerAccountID *int64
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
