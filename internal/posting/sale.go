package posting

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

// PostSale posts a sales invoice: debit bank or receivables for the total,
// credit revenue for the subtotal and, when configured, the tax account for
// the tax portion.
func (s *Service) PostSale(ctx context.Context, saleID int64) (journal.Entry, error) {
	sale, err := s.sales.GetInvoice(ctx, saleID)
	if err != nil {
		return journal.Entry{}, err
	}
	source := shared.SourceRef{Kind: shared.DocTypeSale, ID: sale.ID}

	if entry, found, err := s.ledger.FindBySource(ctx, source); err != nil {
		return journal.Entry{}, err
	} else if found {
		// Already posted; bring a stale document flag back in sync.
		if !sale.Posted {
			if err := s.sales.MarkInvoicePosted(ctx, sale.ID, s.now()); err != nil {
				return journal.Entry{}, err
			}
		}
		return entry, nil
	}

	rule, err := s.rules.Get(ctx, sale.CompanyID, shared.DocTypeSale)
	if err != nil {
		return journal.Entry{}, err
	}

	debitAccount := rule.DebitAccount
	if sale.IsCash {
		if debitAccount, err = s.bankAccount(ctx, sale.CompanyID, ""); err != nil {
			return journal.Entry{}, err
		}
	}

	lines := []journal.LineInput{
		{AccountID: debitAccount.ID, Debit: sale.Total, Description: fmt.Sprintf("Sale %s", sale.Number)},
		{AccountID: rule.CreditAccount.ID, Credit: sale.Subtotal, Description: "Revenue"},
	}
	if sale.Tax.IsPositive() && rule.TaxAccount != nil {
		lines = append(lines, journal.LineInput{
			AccountID:   rule.TaxAccount.ID,
			Credit:      sale.Tax,
			Description: "Sales tax",
		})
	}

	customerID := sale.CustomerID
	input := journal.EntryInput{
		CompanyID:  sale.CompanyID,
		Date:       sale.Date,
		Memo:       fmt.Sprintf("Sale %s", sale.Number),
		CustomerID: &customerID,
		Source:     source,
		Lines:      lines,
	}

	var entry journal.Entry
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if entry, err = s.ledger.Post(ctx, input); err != nil {
			return err
		}
		return s.sales.MarkInvoicePosted(ctx, sale.ID, s.now())
	})
	if errors.Is(err, shared.ErrSourceConflict) {
		return s.entryAfterConflict(ctx, source, func(ctx context.Context) error {
			return s.sales.MarkInvoicePosted(ctx, sale.ID, s.now())
		})
	}
	if err != nil {
		return journal.Entry{}, err
	}
	s.recordPosted(shared.DocTypeSale, entry)
	return entry, nil
}
