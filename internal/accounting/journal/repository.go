package journal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/platform/db"
)

// Repository encapsulates DB operations for journal entries and lines.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Entry, error)
	GetWithLines(ctx context.Context, entryID int64) (Entry, error)
	FindBySource(ctx context.Context, source shared.SourceRef) (Entry, bool, error)
	InsertEntry(ctx context.Context, in EntryInput) (Entry, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineInput) error
	DeleteEntry(ctx context.Context, entryID int64) error
	UnbalancedEntryIDs(ctx context.Context) ([]int64, error)
}

type repository struct {
	db *db.Runner
}

func NewRepository(runner *db.Runner) Repository {
	return &repository{db: runner}
}

const entryColumns = `id, ref, company_id, date, memo, customer_id, supplier_id, posted, source_kind, source_id, created_at, updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Ref, &e.CompanyID, &e.Date, &e.Memo, &e.CustomerID, &e.SupplierID,
		&e.Posted, &e.Source.Kind, &e.Source.ID, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Entry, error) {
	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE company_id=$1 ORDER BY id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) GetWithLines(ctx context.Context, entryID int64) (Entry, error) {
	entry, err := scanEntry(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrJournalNotFound
		}
		return Entry{}, err
	}
	lines, err := r.linesFor(ctx, entryID)
	if err != nil {
		return Entry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func (r *repository) linesFor(ctx context.Context, entryID int64) ([]Line, error) {
	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT id, entry_id, account_id, debit::text, credit::text, description
FROM journal_lines WHERE entry_id=$1 ORDER BY id ASC`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var line Line
		var debit, credit string
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &debit, &credit, &line.Description); err != nil {
			return nil, err
		}
		if line.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, err
		}
		if line.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *repository) FindBySource(ctx context.Context, source shared.SourceRef) (Entry, bool, error) {
	entry, err := scanEntry(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE source_kind=$1 AND source_id=$2`,
		source.Kind, source.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	lines, err := r.linesFor(ctx, entry.ID)
	if err != nil {
		return Entry{}, false, err
	}
	entry.Lines = lines
	return entry, true, nil
}

func (r *repository) InsertEntry(ctx context.Context, in EntryInput) (Entry, error) {
	ref := uuid.New()
	row := r.db.Querier(ctx).QueryRow(ctx,
		`INSERT INTO journal_entries (ref, company_id, date, memo, customer_id, supplier_id, posted, source_kind, source_id)
VALUES ($1,$2,$3,$4,$5,$6,TRUE,$7,$8)
RETURNING id, created_at, updated_at`,
		ref, in.CompanyID, in.Date, in.Memo, in.CustomerID, in.SupplierID, in.Source.Kind, in.Source.ID)
	entry := Entry{
		Ref:        ref,
		CompanyID:  in.CompanyID,
		Date:       in.Date,
		Memo:       in.Memo,
		CustomerID: in.CustomerID,
		SupplierID: in.SupplierID,
		Posted:     true,
		Source:     in.Source,
	}
	if err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_journal_entries_source" {
			return Entry{}, shared.ErrSourceConflict
		}
		return Entry{}, err
	}
	return entry, nil
}

func (r *repository) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	q := r.db.Querier(ctx)
	for _, line := range lines {
		if _, err := q.Exec(ctx,
			`INSERT INTO journal_lines (entry_id, account_id, debit, credit, description)
VALUES ($1,$2,$3,$4,$5)`,
			entryID, line.AccountID, line.Debit.StringFixed(2), line.Credit.StringFixed(2), line.Description); err != nil {
			return err
		}
	}
	return nil
}

// DeleteEntry removes the entry; lines cascade at the database level.
func (r *repository) DeleteEntry(ctx context.Context, entryID int64) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM journal_entries WHERE id=$1`, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrJournalNotFound
	}
	return nil
}

// UnbalancedEntryIDs reports entries whose debit and credit sums diverge.
// Posting validates balance before writing, so a hit means corruption.
func (r *repository) UnbalancedEntryIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT entry_id FROM journal_lines GROUP BY entry_id HAVING SUM(debit) <> SUM(credit)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
