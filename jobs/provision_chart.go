package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/dentex-erp/dentex-erp/internal/jobs"
)

// ChartProvisioner provisions a company's default chart of accounts.
type ChartProvisioner interface {
	EnsureDefaultChart(ctx context.Context, companyID int64) error
}

// ProvisionChartJob retries chart provisioning until every default account
// exists; EnsureDefaultChart is idempotent so replays are safe.
type ProvisionChartJob struct {
	accounts ChartProvisioner
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
}

func NewProvisionChartJob(accounts ChartProvisioner, logger *slog.Logger, metrics *jobmetrics.Metrics) *ProvisionChartJob {
	return &ProvisionChartJob{accounts: accounts, logger: logger, metrics: metrics}
}

// Handle processes TaskTypeProvisionChart tasks.
func (j *ProvisionChartJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ProvisionChartPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.metrics.Track("provision_chart")
	err := j.accounts.EnsureDefaultChart(ctx, payload.CompanyID)
	if err != nil {
		j.logger.Error("provision chart",
			slog.Int64("company_id", payload.CompanyID), slog.Any("error", err))
	}
	return tracker.End(err)
}
