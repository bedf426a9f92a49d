package banking

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dentex-erp/dentex-erp/internal/platform/db"
)

var ErrAccountNotFound = errors.New("banking: financial account not found")

type Repository interface {
	Get(ctx context.Context, id int64) (FinancialAccount, error)
	List(ctx context.Context, companyID int64) ([]FinancialAccount, error)
}

type repository struct {
	db *db.Runner
}

func NewRepository(runner *db.Runner) Repository {
	return &repository{db: runner}
}

const columns = `id, company_id, name, account_type, ledger_account_id, is_active, created_at, updated_at`

func scan(row pgx.Row) (FinancialAccount, error) {
	var a FinancialAccount
	err := row.Scan(&a.ID, &a.CompanyID, &a.Name, &a.AccountType, &a.LedgerAccountID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) Get(ctx context.Context, id int64) (FinancialAccount, error) {
	a, err := scan(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM financial_accounts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FinancialAccount{}, ErrAccountNotFound
		}
		return FinancialAccount{}, err
	}
	return a, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]FinancialAccount, error) {
	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT `+columns+` FROM financial_accounts WHERE company_id=$1 ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FinancialAccount
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
