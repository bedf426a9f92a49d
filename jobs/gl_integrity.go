package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/dentex-erp/dentex-erp/internal/jobs"
)

// IntegritySource reports journal entries whose lines do not balance.
type IntegritySource interface {
	UnbalancedEntryIDs(ctx context.Context) ([]int64, error)
}

// GLIntegrityJob runs the nightly balance scan. The posting path validates
// balance before writing, so any hit points at out-of-band mutation and is
// logged loudly rather than repaired.
type GLIntegrityJob struct {
	journal IntegritySource
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

func NewGLIntegrityJob(journal IntegritySource, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	return &GLIntegrityJob{journal: journal, logger: logger, metrics: metrics}
}

// Handle processes TaskTypeGLIntegrity tasks.
func (j *GLIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload GLIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.metrics.Track("gl_integrity")
	ids, err := j.journal.UnbalancedEntryIDs(ctx)
	if err != nil {
		return tracker.End(err)
	}
	if j.metrics != nil {
		j.metrics.SetUnbalanced(payload.CompanyID, len(ids))
	}
	if len(ids) > 0 {
		j.logger.Error("unbalanced journal entries detected",
			slog.Int("count", len(ids)), slog.Any("entry_ids", ids))
	} else {
		j.logger.Info("gl integrity scan clean")
	}
	return tracker.End(nil)
}
