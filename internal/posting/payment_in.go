package posting

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentex-erp/dentex-erp/internal/accounting/accounts"
	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

// PostIncomingPayment posts money received from a customer: debit the
// settlement account, credit receivables. Company and customer fall back to
// the linked invoice when the payment does not carry them directly.
func (s *Service) PostIncomingPayment(ctx context.Context, paymentID int64) (journal.Entry, error) {
	payment, err := s.sales.GetPayment(ctx, paymentID)
	if err != nil {
		return journal.Entry{}, err
	}

	companyID := payment.CompanyID
	customerID := payment.CustomerID
	if (companyID == 0 || customerID == nil) && payment.InvoiceID != nil {
		invoice, err := s.sales.GetInvoice(ctx, *payment.InvoiceID)
		if err != nil {
			return journal.Entry{}, err
		}
		if companyID == 0 {
			companyID = invoice.CompanyID
		}
		if customerID == nil {
			id := invoice.CustomerID
			customerID = &id
		}
	}
	if companyID == 0 {
		return journal.Entry{}, fmt.Errorf("%w: payment %d has no company", shared.ErrPrecondition, payment.ID)
	}
	if !payment.Amount.IsPositive() {
		return journal.Entry{}, fmt.Errorf("%w: payment %d amount must be positive", shared.ErrPrecondition, payment.ID)
	}
	source := shared.SourceRef{Kind: shared.DocTypePaymentIn, ID: payment.ID}

	if entry, found, err := s.ledger.FindBySource(ctx, source); err != nil {
		return journal.Entry{}, err
	} else if found {
		if !payment.Posted {
			if err := s.sales.MarkPaymentPosted(ctx, payment.ID, s.now()); err != nil {
				return journal.Entry{}, err
			}
		}
		return entry, nil
	}

	rule, err := s.rules.Get(ctx, companyID, shared.DocTypePaymentIn)
	if err != nil {
		return journal.Entry{}, err
	}

	debitAccount, err := s.incomingDebitAccount(ctx, companyID, payment.FinancialAccountID, rule.DebitAccount)
	if err != nil {
		return journal.Entry{}, err
	}

	input := journal.EntryInput{
		CompanyID:  companyID,
		Date:       payment.ReceivedAt,
		Memo:       fmt.Sprintf("Payment received %s", payment.Number),
		CustomerID: customerID,
		Source:     source,
		Lines: []journal.LineInput{
			{AccountID: debitAccount.ID, Debit: payment.Amount, Description: fmt.Sprintf("Payment %s", payment.Number)},
			{AccountID: rule.CreditAccount.ID, Credit: payment.Amount, Description: "Accounts receivable"},
		},
	}

	var entry journal.Entry
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if entry, err = s.ledger.Post(ctx, input); err != nil {
			return err
		}
		return s.sales.MarkPaymentPosted(ctx, payment.ID, s.now())
	})
	if errors.Is(err, shared.ErrSourceConflict) {
		return s.entryAfterConflict(ctx, source, func(ctx context.Context) error {
			return s.sales.MarkPaymentPosted(ctx, payment.ID, s.now())
		})
	}
	if err != nil {
		return journal.Entry{}, err
	}
	s.recordPosted(shared.DocTypePaymentIn, entry)
	return entry, nil
}

// incomingDebitAccount resolves where received money lands: the financial
// account's ledger link first, then the default code for its account type,
// then the rule's debit account.
func (s *Service) incomingDebitAccount(ctx context.Context, companyID int64, financialAccountID *int64, fallback accounts.Account) (accounts.Account, error) {
	if financialAccountID == nil {
		return fallback, nil
	}
	fa, err := s.banking.Get(ctx, *financialAccountID)
	if err != nil {
		return accounts.Account{}, err
	}
	if fa.LedgerAccountID != nil {
		return s.accounts.GetByID(ctx, *fa.LedgerAccountID)
	}
	if code := accounts.DefaultCodeForFinancialAccount(fa.AccountType); code != "" {
		account, err := s.accounts.GetByCode(ctx, companyID, code)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, shared.ErrAccountNotFound) {
			return accounts.Account{}, err
		}
	}
	return fallback, nil
}
