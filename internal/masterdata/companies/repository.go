package companies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dentex-erp/dentex-erp/internal/platform/db"
)

var ErrCompanyNotFound = errors.New("companies: company not found")

type Repository interface {
	List(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, in CreateInput) (Company, error)
}

type repository struct {
	db *db.Runner
}

func NewRepository(runner *db.Runner) Repository {
	return &repository{db: runner}
}

const columns = `id, name, currency, is_active, created_at, updated_at`

func scan(row pgx.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.Currency, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context) ([]Company, error) {
	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT `+columns+` FROM companies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Company
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	c, err := scan(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM companies WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrCompanyNotFound
		}
		return Company{}, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, in CreateInput) (Company, error) {
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	return scan(r.db.Querier(ctx).QueryRow(ctx,
		`INSERT INTO companies (name, currency, is_active) VALUES ($1,$2,TRUE)
RETURNING `+columns, in.Name, currency))
}
