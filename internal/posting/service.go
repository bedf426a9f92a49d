// Package posting turns approved source documents into balanced journal
// entries. One Post* method exists per document kind; each runs its account
// resolution, entry creation and document flag flip inside one database
// transaction, and returns the already-linked entry when the document was
// posted before.
package posting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dentex-erp/dentex-erp/internal/accounting/accounts"
	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/rules"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/banking"
	"github.com/dentex-erp/dentex-erp/internal/expenses"
	"github.com/dentex-erp/dentex-erp/internal/observability"
	"github.com/dentex-erp/dentex-erp/internal/purchasing"
	"github.com/dentex-erp/dentex-erp/internal/sales"
)

// RuleSource resolves posting rules.
type RuleSource interface {
	Get(ctx context.Context, companyID int64, docType shared.DocType) (rules.Rule, error)
}

// AccountSource resolves and lazily creates ledger accounts.
type AccountSource interface {
	GetByID(ctx context.Context, id int64) (accounts.Account, error)
	GetByCode(ctx context.Context, companyID int64, code string) (accounts.Account, error)
	Ensure(ctx context.Context, companyID int64, seed accounts.Seed) (accounts.Account, error)
}

// Ledger exposes the journal operations the posting engine needs.
type Ledger interface {
	Post(ctx context.Context, input journal.EntryInput) (journal.Entry, error)
	FindBySource(ctx context.Context, source shared.SourceRef) (journal.Entry, bool, error)
	GetWithLines(ctx context.Context, entryID int64) (journal.Entry, error)
	Delete(ctx context.Context, entryID int64) (journal.Entry, error)
}

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(context.Context) error) error
}

type Service struct {
	tx         TxRunner
	rules      RuleSource
	accounts   AccountSource
	ledger     Ledger
	sales      sales.Repository
	purchasing purchasing.Repository
	expenses   expenses.Repository
	banking    banking.Repository
	metrics    *observability.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// Deps groups the collaborators wired into the posting service.
type Deps struct {
	Tx         TxRunner
	Rules      RuleSource
	Accounts   AccountSource
	Ledger     Ledger
	Sales      sales.Repository
	Purchasing purchasing.Repository
	Expenses   expenses.Repository
	Banking    banking.Repository
	Metrics    *observability.Metrics
	Logger     *slog.Logger
}

func NewService(deps Deps) *Service {
	return &Service{
		tx:         deps.Tx,
		rules:      deps.Rules,
		accounts:   deps.Accounts,
		ledger:     deps.Ledger,
		sales:      deps.Sales,
		purchasing: deps.Purchasing,
		expenses:   deps.Expenses,
		banking:    deps.Banking,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// bankAccount fetches the settlement account for a company by code. A missing
// account is a configuration error, never silently substituted.
func (s *Service) bankAccount(ctx context.Context, companyID int64, code string) (accounts.Account, error) {
	if code == "" {
		code = accounts.CodeBankChecking
	}
	return s.accounts.GetByCode(ctx, companyID, code)
}

// entryAfterConflict resolves the entry another caller committed for the same
// source while our own insert was in flight. The losing transaction has rolled
// back by now and its snapshot could not see the winner, so the lookup runs on
// the caller's plain connection; syncSource brings the document flag in line
// with the entry that won.
func (s *Service) entryAfterConflict(ctx context.Context, source shared.SourceRef, syncSource func(context.Context) error) (journal.Entry, error) {
	entry, found, err := s.ledger.FindBySource(ctx, source)
	if err != nil {
		return journal.Entry{}, err
	}
	if !found {
		return journal.Entry{}, shared.ErrSourceConflict
	}
	if err := syncSource(ctx); err != nil {
		return journal.Entry{}, err
	}
	return entry, nil
}

func (s *Service) recordPosted(docType shared.DocType, entry journal.Entry) {
	if s.metrics != nil {
		s.metrics.EntryPosted(string(docType))
	}
	if s.logger != nil {
		s.logger.Info("document posted",
			slog.String("doc_type", string(docType)),
			slog.Int64("source_id", entry.Source.ID),
			slog.Int64("entry_id", entry.ID),
		)
	}
}

// Rollback resets the source document behind a posted entry and deletes the
// entry outright. A vanished source document is tolerated: the entry is still
// removed and the result reports source_updated=false.
func (s *Service) Rollback(ctx context.Context, entryID int64) (journal.RollbackResult, error) {
	var result journal.RollbackResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		entry, err := s.ledger.GetWithLines(ctx, entryID)
		if err != nil {
			return err
		}
		sourceUpdated, err := s.resetSource(ctx, entry.Source)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Delete(ctx, entry.ID); err != nil {
			return err
		}
		result = journal.RollbackResult{
			Success:       true,
			Message:       fmt.Sprintf("journal entry %d rolled back", entry.ID),
			SourceUpdated: sourceUpdated,
		}
		return nil
	})
	if err != nil {
		return journal.RollbackResult{Success: false, Message: err.Error()}, err
	}
	if s.metrics != nil {
		s.metrics.EntryRolledBack()
	}
	return result, nil
}

func (s *Service) resetSource(ctx context.Context, source shared.SourceRef) (bool, error) {
	var err error
	switch source.Kind {
	case shared.DocTypeSale:
		err = s.sales.ResetInvoicePosted(ctx, source.ID)
		if errors.Is(err, sales.ErrInvoiceNotFound) {
			return false, nil
		}
	case shared.DocTypePaymentIn:
		err = s.sales.ResetPaymentPosted(ctx, source.ID)
		if errors.Is(err, sales.ErrPaymentNotFound) {
			return false, nil
		}
	case shared.DocTypePurchase:
		err = s.purchasing.ResetOrderPosted(ctx, source.ID)
		if errors.Is(err, purchasing.ErrOrderNotFound) {
			return false, nil
		}
	case shared.DocTypePaymentOut:
		err = s.purchasing.ResetPaymentPosted(ctx, source.ID)
		if errors.Is(err, purchasing.ErrPaymentNotFound) {
			return false, nil
		}
	case shared.DocTypeExpense:
		err = s.expenses.ResetPosted(ctx, source.ID)
		if errors.Is(err, expenses.ErrExpenseNotFound) {
			return false, nil
		}
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
