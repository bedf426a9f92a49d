package posting

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentex-erp/dentex-erp/internal/accounting/accounts"
	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

// PostOutgoingPayment posts money paid to a supplier: debit payables (or
// vendor advances for prepayments), credit the bank account.
func (s *Service) PostOutgoingPayment(ctx context.Context, paymentID int64) (journal.Entry, error) {
	payment, err := s.purchasing.GetPayment(ctx, paymentID)
	if err != nil {
		return journal.Entry{}, err
	}

	companyID := payment.CompanyID
	supplierID := payment.SupplierID
	advance := payment.IsAdvance
	if payment.OrderID != nil {
		order, err := s.purchasing.GetOrder(ctx, *payment.OrderID)
		if err != nil {
			return journal.Entry{}, err
		}
		if companyID == 0 {
			companyID = order.CompanyID
		}
		if supplierID == nil {
			id := order.SupplierID
			supplierID = &id
		}
		// A payment against an order with no vendor bill yet is a prepayment.
		if !order.Billed {
			advance = true
		}
	}
	if companyID == 0 {
		return journal.Entry{}, fmt.Errorf("%w: payment %d has no company", shared.ErrPrecondition, payment.ID)
	}
	if !payment.Amount.IsPositive() {
		return journal.Entry{}, fmt.Errorf("%w: payment %d amount must be positive", shared.ErrPrecondition, payment.ID)
	}
	source := shared.SourceRef{Kind: shared.DocTypePaymentOut, ID: payment.ID}

	if entry, found, err := s.ledger.FindBySource(ctx, source); err != nil {
		return journal.Entry{}, err
	} else if found {
		if !payment.Posted {
			if err := s.purchasing.MarkPaymentPosted(ctx, payment.ID, s.now()); err != nil {
				return journal.Entry{}, err
			}
		}
		return entry, nil
	}

	rule, err := s.rules.Get(ctx, companyID, shared.DocTypePaymentOut)
	if err != nil {
		return journal.Entry{}, err
	}

	debitAccount := rule.DebitAccount
	if advance {
		account, err := s.accounts.GetByCode(ctx, companyID, accounts.CodeVendorAdvances)
		switch {
		case err == nil:
			debitAccount = account
		case errors.Is(err, shared.ErrAccountNotFound):
			// No vendor advances account configured; fall back to payables.
		default:
			return journal.Entry{}, err
		}
	}

	creditAccount, err := s.bankAccount(ctx, companyID, payment.BankAccountCode)
	if err != nil {
		return journal.Entry{}, err
	}

	input := journal.EntryInput{
		CompanyID:  companyID,
		Date:       payment.PaidAt,
		Memo:       fmt.Sprintf("Payment sent %s", payment.Number),
		SupplierID: supplierID,
		Source:     source,
		Lines: []journal.LineInput{
			{AccountID: debitAccount.ID, Debit: payment.Amount, Description: fmt.Sprintf("Payment %s", payment.Number)},
			{AccountID: creditAccount.ID, Credit: payment.Amount, Description: "Bank"},
		},
	}

	var entry journal.Entry
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if entry, err = s.ledger.Post(ctx, input); err != nil {
			return err
		}
		return s.purchasing.MarkPaymentPosted(ctx, payment.ID, s.now())
	})
	if errors.Is(err, shared.ErrSourceConflict) {
		return s.entryAfterConflict(ctx, source, func(ctx context.Context) error {
			return s.purchasing.MarkPaymentPosted(ctx, payment.ID, s.now())
		})
	}
	if err != nil {
		return journal.Entry{}, err
	}
	s.recordPosted(shared.DocTypePaymentOut, entry)
	return entry, nil
}
