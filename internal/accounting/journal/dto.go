package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

// LineInput describes a journal line for a posting request.
type LineInput struct {
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// EntryInput groups fields required to create a journal entry.
type EntryInput struct {
	CompanyID  int64
	Date       time.Time
	Memo       string
	CustomerID *int64
	SupplierID *int64
	Source     shared.SourceRef
	Lines      []LineInput
}

// Validate ensures the input describes a balanced double-entry record before
// anything is written.
func (in EntryInput) Validate() error {
	if in.CompanyID == 0 {
		return errors.New("accounting: company required")
	}
	if in.Source.IsZero() || !in.Source.Kind.Valid() {
		return errors.New("accounting: source reference required")
	}
	if in.CustomerID != nil && in.SupplierID != nil {
		return shared.ErrBothParties
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	debit := decimal.Zero
	credit := decimal.Zero
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("accounting: line %d missing account", idx)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("accounting: line %d negative amount", idx)
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return fmt.Errorf("accounting: line %d must be either debit or credit", idx)
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !debit.Equal(credit) {
		return shared.ErrUnbalanced
	}
	return nil
}

// RollbackResult reports the outcome of rolling a posted entry back.
type RollbackResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	SourceUpdated bool   `json:"source_updated"`
}
