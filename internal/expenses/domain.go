package expenses

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus enumerates expense lifecycle values.
type ExpenseStatus string

const (
	ExpenseStatusPending   ExpenseStatus = "pending"
	ExpenseStatusCompleted ExpenseStatus = "completed"
)

// Expense is an operating cost outside the purchasing flow. ExpenseAccountID,
// when set, overrides the category-derived expense account. Paid expenses
// credit the linked financial account (or the default bank account); unpaid
// expenses credit accounts payable.
type Expense struct {
	ID                 int64
	CompanyID          int64
	VendorID           *int64
	Number             string
	Date               time.Time
	Category           string
	ExpenseAccountID   *int64
	FinancialAccountID *int64
	Paid               bool
	TaxAmount          decimal.Decimal
	TotalAmount        decimal.Decimal
	Status             ExpenseStatus
	Posted             bool
	PostedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
