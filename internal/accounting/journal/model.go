package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

// Entry is a balanced journal entry posted from one source document. At most
// one of CustomerID/SupplierID is set (check constraint), and Source is unique
// across the journal (unique index), which is what makes posting idempotent.
type Entry struct {
	ID         int64
	Ref        uuid.UUID
	CompanyID  int64
	Date       time.Time
	Memo       string
	CustomerID *int64
	SupplierID *int64
	Posted     bool
	Source     shared.SourceRef
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Lines      []Line
}

// Line stores a debit or credit amount for an account. Exactly one of
// Debit/Credit is positive, the other zero.
type Line struct {
	ID          int64
	EntryID     int64
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// DebitTotal sums the debit side of the entry.
func (e Entry) DebitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Debit)
	}
	return total
}

// CreditTotal sums the credit side of the entry.
func (e Entry) CreditTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Credit)
	}
	return total
}
