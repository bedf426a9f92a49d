package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/platform/db"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Account, error)
	GetByID(ctx context.Context, id int64) (Account, error)
	GetByCode(ctx context.Context, companyID int64, code string) (Account, error)
	// Ensure returns the account for (company, code), creating it when absent.
	Ensure(ctx context.Context, companyID int64, seed Seed) (Account, error)
	Create(ctx context.Context, companyID int64, seed Seed) (Account, error)
}

type repository struct {
	db *db.Runner
}

func NewRepository(runner *db.Runner) Repository {
	return &repository{db: runner}
}

const accountColumns = `id, company_id, code, name, type, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Account, error) {
	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT `+accountColumns+` FROM gl_accounts WHERE company_id=$1 ORDER BY code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM gl_accounts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) GetByCode(ctx context.Context, companyID int64, code string) (Account, error) {
	a, err := scanAccount(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM gl_accounts WHERE company_id=$1 AND code=$2`, companyID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.MissingAccount(companyID, code)
		}
		return Account{}, err
	}
	return a, nil
}

// Ensure upserts by (company_id, code). The no-op DO UPDATE makes RETURNING
// yield the existing row, so concurrent first-time creation converges on the
// database's uniqueness enforcement instead of racing.
func (r *repository) Ensure(ctx context.Context, companyID int64, seed Seed) (Account, error) {
	return scanAccount(r.db.Querier(ctx).QueryRow(ctx,
		`INSERT INTO gl_accounts (company_id, code, name, type, is_active)
VALUES ($1,$2,$3,$4,TRUE)
ON CONFLICT (company_id, code) DO UPDATE SET code=EXCLUDED.code
RETURNING `+accountColumns,
		companyID, seed.Code, seed.Name, seed.Type))
}

func (r *repository) Create(ctx context.Context, companyID int64, seed Seed) (Account, error) {
	return scanAccount(r.db.Querier(ctx).QueryRow(ctx,
		`INSERT INTO gl_accounts (company_id, code, name, type, is_active)
VALUES ($1,$2,$3,$4,TRUE)
RETURNING `+accountColumns,
		companyID, seed.Code, seed.Name, seed.Type))
}
