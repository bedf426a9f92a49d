package posting

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentex-erp/dentex-erp/internal/accounting/accounts"
	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/expenses"
)

// PostExpense posts an operating expense: debit the category (or explicitly
// chosen) expense account for the pre-tax amount, debit sales tax expense for
// the tax portion, credit bank or payables depending on whether it was paid.
// Missing accounts are created from their chart defaults on first use.
func (s *Service) PostExpense(ctx context.Context, expenseID int64) (journal.Entry, error) {
	expense, err := s.expenses.Get(ctx, expenseID)
	if err != nil {
		return journal.Entry{}, err
	}
	if !expense.TotalAmount.IsPositive() {
		return journal.Entry{}, fmt.Errorf("%w: expense %d total must be positive", shared.ErrPrecondition, expense.ID)
	}
	source := shared.SourceRef{Kind: shared.DocTypeExpense, ID: expense.ID}

	if entry, found, err := s.ledger.FindBySource(ctx, source); err != nil {
		return journal.Entry{}, err
	} else if found {
		if !expense.Posted {
			if err := s.expenses.MarkPosted(ctx, expense.ID, s.now()); err != nil {
				return journal.Entry{}, err
			}
		}
		return entry, nil
	}

	debitAccount, err := s.expenseDebitAccount(ctx, expense)
	if err != nil {
		return journal.Entry{}, err
	}
	creditAccount, err := s.expenseCreditAccount(ctx, expense)
	if err != nil {
		return journal.Entry{}, err
	}

	base := expense.TotalAmount.Sub(expense.TaxAmount)
	lines := []journal.LineInput{
		{AccountID: debitAccount.ID, Debit: base, Description: fmt.Sprintf("Expense %s", expense.Number)},
	}
	if expense.TaxAmount.IsPositive() {
		taxAccount, err := s.accounts.Ensure(ctx, expense.CompanyID, accounts.Seed{
			Code: accounts.CodeSalesTaxExpense,
			Name: "Sales Tax Expense",
			Type: accounts.AccountTypeExpense,
		})
		if err != nil {
			return journal.Entry{}, err
		}
		lines = append(lines, journal.LineInput{
			AccountID:   taxAccount.ID,
			Debit:       expense.TaxAmount,
			Description: "Sales tax",
		})
	}
	lines = append(lines, journal.LineInput{
		AccountID:   creditAccount.ID,
		Credit:      expense.TotalAmount,
		Description: fmt.Sprintf("Expense %s", expense.Number),
	})

	input := journal.EntryInput{
		CompanyID:  expense.CompanyID,
		Date:       expense.Date,
		Memo:       fmt.Sprintf("Expense %s", expense.Number),
		SupplierID: expense.VendorID,
		Source:     source,
		Lines:      lines,
	}

	var entry journal.Entry
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if entry, err = s.ledger.Post(ctx, input); err != nil {
			return err
		}
		return s.expenses.MarkPosted(ctx, expense.ID, s.now())
	})
	if errors.Is(err, shared.ErrSourceConflict) {
		return s.entryAfterConflict(ctx, source, func(ctx context.Context) error {
			return s.expenses.MarkPosted(ctx, expense.ID, s.now())
		})
	}
	if err != nil {
		return journal.Entry{}, err
	}
	s.recordPosted(shared.DocTypeExpense, entry)
	return entry, nil
}

func (s *Service) expenseDebitAccount(ctx context.Context, expense expenses.Expense) (accounts.Account, error) {
	if expense.ExpenseAccountID != nil {
		return s.accounts.GetByID(ctx, *expense.ExpenseAccountID)
	}
	return s.accounts.Ensure(ctx, expense.CompanyID, accounts.ExpenseCategorySeed(expense.Category))
}

// expenseCreditAccount picks the offset side: the linked financial account's
// ledger account for paid expenses, the checking account when no link exists,
// accounts payable otherwise.
func (s *Service) expenseCreditAccount(ctx context.Context, expense expenses.Expense) (accounts.Account, error) {
	if !expense.Paid {
		return s.accounts.Ensure(ctx, expense.CompanyID, accounts.Seed{
			Code: accounts.CodeAP,
			Name: "Accounts Payable",
			Type: accounts.AccountTypeLiability,
		})
	}
	if expense.FinancialAccountID != nil {
		fa, err := s.banking.Get(ctx, *expense.FinancialAccountID)
		if err != nil {
			return accounts.Account{}, err
		}
		if fa.LedgerAccountID != nil {
			return s.accounts.GetByID(ctx, *fa.LedgerAccountID)
		}
	}
	return s.accounts.Ensure(ctx, expense.CompanyID, accounts.Seed{
		Code: accounts.CodeBankChecking,
		Name: "Bank - Checking",
		Type: accounts.AccountTypeAsset,
	})
}
