package purchasing

import (
	"context"
	"fmt"

	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

// Poster posts purchasing documents to the ledger.
type Poster interface {
	PostPurchase(ctx context.Context, orderID int64) (journal.Entry, error)
	PostOutgoingPayment(ctx context.Context, paymentID int64) (journal.Entry, error)
}

type Service struct {
	repo   Repository
	poster Poster
}

func NewService(repo Repository, poster Poster) *Service {
	return &Service{repo: repo, poster: poster}
}

func (s *Service) GetOrder(ctx context.Context, id int64) (Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) CreateOrder(ctx context.Context, in Order) (Order, error) {
	if in.CompanyID == 0 {
		return Order{}, fmt.Errorf("%w: order requires a company", shared.ErrPrecondition)
	}
	if !in.Subtotal.Add(in.Tax).Equal(in.Total) {
		return Order{}, fmt.Errorf("%w: order totals do not add up", shared.ErrPrecondition)
	}
	return s.repo.CreateOrder(ctx, in)
}

// ApproveAndPost approves a draft order and posts it in one call. Posting an
// already-posted order returns its existing entry.
func (s *Service) ApproveAndPost(ctx context.Context, orderID int64) (journal.Entry, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return journal.Entry{}, err
	}
	if order.Status == OrderStatusDraft || order.AccountingStatus == AccountingStatusDraft {
		if err := s.repo.ApproveOrder(ctx, order.ID); err != nil {
			return journal.Entry{}, err
		}
	}
	return s.poster.PostPurchase(ctx, order.ID)
}

// SendPayment records an outgoing payment and posts it immediately.
func (s *Service) SendPayment(ctx context.Context, in Payment) (Payment, journal.Entry, error) {
	if !in.Amount.IsPositive() {
		return Payment{}, journal.Entry{}, fmt.Errorf("%w: payment amount must be positive", shared.ErrPrecondition)
	}
	payment, err := s.repo.CreatePayment(ctx, in)
	if err != nil {
		return Payment{}, journal.Entry{}, err
	}
	entry, err := s.poster.PostOutgoingPayment(ctx, payment.ID)
	if err != nil {
		return payment, journal.Entry{}, err
	}
	return payment, entry, nil
}
