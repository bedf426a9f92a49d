package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeProvisionChart provisions the default chart of accounts for a
	// newly created company.
	TaskTypeProvisionChart = "ledger:provision_chart"
	// TaskTypeGLIntegrity scans journal entries for broken balance invariants.
	TaskTypeGLIntegrity = "ledger:gl_integrity"
)

// ProvisionChartPayload identifies the company whose chart to provision.
type ProvisionChartPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewProvisionChartTask constructs an Asynq task.
func NewProvisionChartTask(payload ProvisionChartPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeProvisionChart, data), nil
}

// GLIntegrityPayload scopes the integrity scan; CompanyID zero scans all.
type GLIntegrityPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewGLIntegrityTask constructs an Asynq task.
func NewGLIntegrityTask(payload GLIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeGLIntegrity, data), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	client := asynq.NewClient(redisOpts)
	return &Client{client: client}, nil
}

// EnqueueProvisionChart enqueues a chart-provision task for a company.
func (c *Client) EnqueueProvisionChart(ctx context.Context, companyID int64) error {
	task, err := NewProvisionChartTask(ProvisionChartPayload{CompanyID: companyID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
