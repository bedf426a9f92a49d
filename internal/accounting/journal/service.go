package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	internalShared "github.com/dentex-erp/dentex-erp/internal/shared"
)

// AuditPort records ledger actions.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(context.Context) error) error
}

type Service struct {
	repo  Repository
	tx    TxRunner
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, tx TxRunner, audit AuditPort) *Service {
	return &Service{repo: repo, tx: tx, audit: audit, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context, companyID int64) ([]Entry, error) {
	return s.repo.List(ctx, companyID)
}

func (s *Service) GetWithLines(ctx context.Context, entryID int64) (Entry, error) {
	return s.repo.GetWithLines(ctx, entryID)
}

func (s *Service) FindBySource(ctx context.Context, source shared.SourceRef) (Entry, bool, error) {
	return s.repo.FindBySource(ctx, source)
}

// Post validates and persists a balanced entry with its lines. When another
// entry already holds the source reference the unique index rejects the insert
// and the existing entry is returned instead, so posting the same document
// twice can never duplicate it.
func (s *Service) Post(ctx context.Context, input EntryInput) (Entry, error) {
	if err := input.Validate(); err != nil {
		return Entry{}, err
	}
	var entry Entry
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		inserted, err := s.repo.InsertEntry(ctx, input)
		if err != nil {
			return err
		}
		if err := s.repo.InsertLines(ctx, inserted.ID, input.Lines); err != nil {
			return err
		}
		inserted.Lines = toLines(inserted.ID, input.Lines)
		entry = inserted
		return nil
	})
	if errors.Is(err, shared.ErrSourceConflict) {
		existing, found, findErr := s.repo.FindBySource(ctx, input.Source)
		if findErr != nil || !found {
			// Inside a caller-owned transaction the lookup runs on the
			// aborted tx, or on a snapshot too old to see the winning
			// insert. Surface the conflict so the caller can resolve the
			// existing entry on a fresh connection.
			return Entry{}, err
		}
		return existing, nil
	}
	if err != nil {
		return Entry{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			Action:   "journal.post",
			Entity:   "journal_entry",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta: map[string]any{
				"ref":         entry.Ref.String(),
				"source_kind": string(entry.Source.Kind),
				"source_id":   entry.Source.ID,
			},
			At: s.now(),
		})
	}
	return entry, nil
}

// Delete removes a posted entry and its lines outright. The caller owns
// resetting the source document; this is a hard delete, not a reversing entry.
func (s *Service) Delete(ctx context.Context, entryID int64) (Entry, error) {
	var entry Entry
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetWithLines(ctx, entryID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteEntry(ctx, entryID); err != nil {
			return err
		}
		entry = current
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			Action:   "journal.rollback",
			Entity:   "journal_entry",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta: map[string]any{
				"source_kind": string(entry.Source.Kind),
				"source_id":   entry.Source.ID,
			},
			At: s.now(),
		})
	}
	return entry, nil
}

func toLines(entryID int64, inputs []LineInput) []Line {
	out := make([]Line, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, Line{
			EntryID:     entryID,
			AccountID:   in.AccountID,
			Debit:       in.Debit,
			Credit:      in.Credit,
			Description: in.Description,
		})
	}
	return out
}
