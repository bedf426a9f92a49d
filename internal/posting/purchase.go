package posting

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/purchasing"
)

// PostPurchase posts an approved purchase order. The tax portion is debited on
// the same account as the goods (input tax netted into cost) rather than on a
// separate tax account; the credit side carries the full total.
func (s *Service) PostPurchase(ctx context.Context, orderID int64) (journal.Entry, error) {
	order, err := s.purchasing.GetOrder(ctx, orderID)
	if err != nil {
		return journal.Entry{}, err
	}
	if order.Status == purchasing.OrderStatusDraft || order.AccountingStatus == purchasing.AccountingStatusDraft {
		return journal.Entry{}, fmt.Errorf("%w: purchase order %d is draft", shared.ErrPrecondition, order.ID)
	}
	source := shared.SourceRef{Kind: shared.DocTypePurchase, ID: order.ID}

	if entry, found, err := s.ledger.FindBySource(ctx, source); err != nil {
		return journal.Entry{}, err
	} else if found {
		if !order.Posted {
			if err := s.purchasing.MarkOrderPosted(ctx, order.ID, s.now()); err != nil {
				return journal.Entry{}, err
			}
		}
		return entry, nil
	}

	rule, err := s.rules.Get(ctx, order.CompanyID, shared.DocTypePurchase)
	if err != nil {
		return journal.Entry{}, err
	}

	creditAccount := rule.CreditAccount
	if order.IsCash {
		if creditAccount, err = s.bankAccount(ctx, order.CompanyID, ""); err != nil {
			return journal.Entry{}, err
		}
	}

	lines := []journal.LineInput{
		{AccountID: rule.DebitAccount.ID, Debit: order.Subtotal, Description: fmt.Sprintf("Purchase %s", order.Number)},
	}
	if order.Tax.IsPositive() {
		lines = append(lines, journal.LineInput{
			AccountID:   rule.DebitAccount.ID,
			Debit:       order.Tax,
			Description: "Purchase tax",
		})
	}
	lines = append(lines, journal.LineInput{
		AccountID:   creditAccount.ID,
		Credit:      order.Total,
		Description: fmt.Sprintf("Purchase %s", order.Number),
	})

	supplierID := order.SupplierID
	input := journal.EntryInput{
		CompanyID:  order.CompanyID,
		Date:       order.Date,
		Memo:       fmt.Sprintf("Purchase %s", order.Number),
		SupplierID: &supplierID,
		Source:     source,
		Lines:      lines,
	}

	var entry journal.Entry
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if entry, err = s.ledger.Post(ctx, input); err != nil {
			return err
		}
		return s.purchasing.MarkOrderPosted(ctx, order.ID, s.now())
	})
	if errors.Is(err, shared.ErrSourceConflict) {
		return s.entryAfterConflict(ctx, source, func(ctx context.Context) error {
			return s.purchasing.MarkOrderPosted(ctx, order.ID, s.now())
		})
	}
	if err != nil {
		return journal.Entry{}, err
	}
	s.recordPosted(shared.DocTypePurchase, entry)
	return entry, nil
}
