package expenses

import (
	"context"
	"fmt"

	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

// Poster posts expenses to the ledger.
type Poster interface {
	PostExpense(ctx context.Context, expenseID int64) (journal.Entry, error)
}

type Service struct {
	repo   Repository
	poster Poster
}

func NewService(repo Repository, poster Poster) *Service {
	return &Service{repo: repo, poster: poster}
}

func (s *Service) Get(ctx context.Context, id int64) (Expense, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Record(ctx context.Context, in Expense) (Expense, error) {
	if in.CompanyID == 0 {
		return Expense{}, fmt.Errorf("%w: expense requires a company", shared.ErrPrecondition)
	}
	if in.TaxAmount.GreaterThan(in.TotalAmount) {
		return Expense{}, fmt.Errorf("%w: expense tax exceeds total", shared.ErrPrecondition)
	}
	return s.repo.Create(ctx, in)
}

// RecordAndPost records an expense and posts it in one call.
func (s *Service) RecordAndPost(ctx context.Context, in Expense) (Expense, journal.Entry, error) {
	expense, err := s.Record(ctx, in)
	if err != nil {
		return Expense{}, journal.Entry{}, err
	}
	entry, err := s.poster.PostExpense(ctx, expense.ID)
	if err != nil {
		return expense, journal.Entry{}, err
	}
	return expense, entry, nil
}

// Post posts an existing expense; already-posted expenses return their entry.
func (s *Service) Post(ctx context.Context, expenseID int64) (journal.Entry, error) {
	return s.poster.PostExpense(ctx, expenseID)
}
