package companies

import (
	"context"
	"log/slog"
)

// ChartProvisioner provisions the default chart of accounts for a company.
type ChartProvisioner interface {
	EnsureDefaultChart(ctx context.Context, companyID int64) error
}

// Enqueuer schedules a background re-provision so a partially created chart is
// repaired even when the inline pass fails mid-way.
type Enqueuer interface {
	EnqueueProvisionChart(ctx context.Context, companyID int64) error
}

type Service struct {
	repo     Repository
	chart    ChartProvisioner
	enqueuer Enqueuer
	logger   *slog.Logger
}

func NewService(repo Repository, chart ChartProvisioner, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, chart: chart, enqueuer: enqueuer, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a company and provisions its default chart of accounts.
// Chart provisioning failures do not fail creation; the queued task retries.
func (s *Service) Create(ctx context.Context, in CreateInput) (Company, error) {
	company, err := s.repo.Create(ctx, in)
	if err != nil {
		return Company{}, err
	}
	provisioned := false
	if s.chart != nil {
		if err := s.chart.EnsureDefaultChart(ctx, company.ID); err != nil {
			s.logger.Warn("chart provisioning deferred to worker",
				slog.Int64("company_id", company.ID), slog.Any("error", err))
		} else {
			provisioned = true
		}
	}
	if !provisioned && s.enqueuer != nil {
		if err := s.enqueuer.EnqueueProvisionChart(ctx, company.ID); err != nil {
			s.logger.Warn("enqueue chart provision",
				slog.Int64("company_id", company.ID), slog.Any("error", err))
		}
	}
	return company, nil
}
