package expenses

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dentex-erp/dentex-erp/internal/platform/db"
)

var ErrExpenseNotFound = errors.New("expenses: expense not found")

type Repository interface {
	Get(ctx context.Context, id int64) (Expense, error)
	Create(ctx context.Context, in Expense) (Expense, error)
	MarkPosted(ctx context.Context, id int64, at time.Time) error
	ResetPosted(ctx context.Context, id int64) error
}

type repository struct {
	db *db.Runner
}

func NewRepository(runner *db.Runner) Repository {
	return &repository{db: runner}
}

const columns = `id, company_id, vendor_id, number, date, category, expense_account_id, financial_account_id, paid, tax_amount::text, total_amount::text, status, posted, posted_at, created_at, updated_at`

func scan(row pgx.Row) (Expense, error) {
	var e Expense
	var tax, total string
	err := row.Scan(&e.ID, &e.CompanyID, &e.VendorID, &e.Number, &e.Date, &e.Category,
		&e.ExpenseAccountID, &e.FinancialAccountID, &e.Paid, &tax, &total,
		&e.Status, &e.Posted, &e.PostedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Expense{}, err
	}
	if e.TaxAmount, err = decimal.NewFromString(tax); err != nil {
		return Expense{}, err
	}
	if e.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Expense, error) {
	e, err := scan(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM expenses WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, ErrExpenseNotFound
		}
		return Expense{}, err
	}
	return e, nil
}

func (r *repository) Create(ctx context.Context, in Expense) (Expense, error) {
	status := in.Status
	if status == "" {
		status = ExpenseStatusPending
	}
	return scan(r.db.Querier(ctx).QueryRow(ctx,
		`INSERT INTO expenses (company_id, vendor_id, number, date, category, expense_account_id, financial_account_id, paid, tax_amount, total_amount, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING `+columns,
		in.CompanyID, in.VendorID, in.Number, in.Date, in.Category,
		in.ExpenseAccountID, in.FinancialAccountID, in.Paid,
		in.TaxAmount.StringFixed(2), in.TotalAmount.StringFixed(2), status))
}

func (r *repository) MarkPosted(ctx context.Context, id int64, at time.Time) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE expenses SET posted=TRUE, posted_at=$2, status=$3, updated_at=NOW() WHERE id=$1`,
		id, at, ExpenseStatusCompleted)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (r *repository) ResetPosted(ctx context.Context, id int64) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE expenses SET posted=FALSE, posted_at=NULL, status=$2, updated_at=NOW() WHERE id=$1`,
		id, ExpenseStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
