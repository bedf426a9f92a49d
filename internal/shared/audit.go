package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dentex-erp/dentex-erp/internal/platform/db"
)

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// AuditLogger writes records into audit_logs. Writes join the ambient
// transaction when one is carried in the context, so an audit row never
// outlives a rolled-back posting.
type AuditLogger struct {
	db *db.Runner
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(runner *db.Runner) *AuditLogger {
	return &AuditLogger{db: runner}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	_, err = l.db.Querier(ctx).Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, log.ActorID, log.Action, log.Entity, log.EntityID, metaJSON, log.At)
	return err
}
