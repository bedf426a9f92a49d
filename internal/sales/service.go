package sales

import (
	"context"
	"fmt"

	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

// Poster posts sales documents to the ledger.
type Poster interface {
	PostSale(ctx context.Context, saleID int64) (journal.Entry, error)
	PostIncomingPayment(ctx context.Context, paymentID int64) (journal.Entry, error)
}

type Service struct {
	repo   Repository
	poster Poster
}

func NewService(repo Repository, poster Poster) *Service {
	return &Service{repo: repo, poster: poster}
}

func (s *Service) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) CreateInvoice(ctx context.Context, in Invoice) (Invoice, error) {
	if in.CompanyID == 0 {
		return Invoice{}, fmt.Errorf("%w: invoice requires a company", shared.ErrPrecondition)
	}
	if !in.Subtotal.Add(in.Tax).Equal(in.Total) {
		return Invoice{}, fmt.Errorf("%w: invoice totals do not add up", shared.ErrPrecondition)
	}
	return s.repo.CreateInvoice(ctx, in)
}

// ApproveAndPost moves a draft invoice to approved and posts it in one call.
// Calling it again on a posted invoice returns the existing entry.
func (s *Service) ApproveAndPost(ctx context.Context, invoiceID int64) (journal.Entry, error) {
	invoice, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return journal.Entry{}, err
	}
	if invoice.Status == InvoiceStatusDraft {
		if err := s.repo.SetInvoiceStatus(ctx, invoice.ID, InvoiceStatusApproved); err != nil {
			return journal.Entry{}, err
		}
	}
	return s.poster.PostSale(ctx, invoice.ID)
}

// ReceivePayment records an incoming payment and posts it immediately.
func (s *Service) ReceivePayment(ctx context.Context, in Payment) (Payment, journal.Entry, error) {
	if !in.Amount.IsPositive() {
		return Payment{}, journal.Entry{}, fmt.Errorf("%w: payment amount must be positive", shared.ErrPrecondition)
	}
	payment, err := s.repo.CreatePayment(ctx, in)
	if err != nil {
		return Payment{}, journal.Entry{}, err
	}
	entry, err := s.poster.PostIncomingPayment(ctx, payment.ID)
	if err != nil {
		return payment, journal.Entry{}, err
	}
	return payment, entry, nil
}
