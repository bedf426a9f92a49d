package accounts

import (
	"context"
	"errors"
	"log/slog"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, companyID int64) ([]Account, error) {
	return s.repo.List(ctx, companyID)
}

func (s *Service) GetByCode(ctx context.Context, companyID int64, code string) (Account, error) {
	return s.repo.GetByCode(ctx, companyID, code)
}

func (s *Service) Create(ctx context.Context, companyID int64, seed Seed) (Account, error) {
	if seed.Code == "" || seed.Name == "" {
		return Account{}, errors.New("accounting: account code and name required")
	}
	switch seed.Type {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
	default:
		return Account{}, errors.New("accounting: unknown account type")
	}
	return s.repo.Create(ctx, companyID, seed)
}

// EnsureDefaultChart provisions the default chart of accounts for a company.
// It is idempotent: accounts that already exist are left untouched, so it can
// run at company creation and again from the background worker.
func (s *Service) EnsureDefaultChart(ctx context.Context, companyID int64) error {
	for _, seed := range DefaultChart() {
		if _, err := s.repo.Ensure(ctx, companyID, seed); err != nil {
			return err
		}
	}
	if s.logger != nil {
		s.logger.Info("default chart provisioned", slog.Int64("company_id", companyID))
	}
	return nil
}
