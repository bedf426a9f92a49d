package purchasing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dentex-erp/dentex-erp/internal/platform/db"
)

var (
	ErrOrderNotFound   = errors.New("purchasing: order not found")
	ErrPaymentNotFound = errors.New("purchasing: payment not found")
)

type Repository interface {
	GetOrder(ctx context.Context, id int64) (Order, error)
	CreateOrder(ctx context.Context, in Order) (Order, error)
	ApproveOrder(ctx context.Context, id int64) error
	MarkOrderPosted(ctx context.Context, id int64, at time.Time) error
	ResetOrderPosted(ctx context.Context, id int64) error

	GetPayment(ctx context.Context, id int64) (Payment, error)
	CreatePayment(ctx context.Context, in Payment) (Payment, error)
	MarkPaymentPosted(ctx context.Context, id int64, at time.Time) error
	ResetPaymentPosted(ctx context.Context, id int64) error
}

type repository struct {
	db *db.Runner
}

func NewRepository(runner *db.Runner) Repository {
	return &repository{db: runner}
}

const orderColumns = `id, company_id, supplier_id, number, date, subtotal::text, tax::text, total::text, is_cash, status, accounting_status, billed, posted, posted_at, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var subtotal, tax, total string
	err := row.Scan(&o.ID, &o.CompanyID, &o.SupplierID, &o.Number, &o.Date,
		&subtotal, &tax, &total, &o.IsCash, &o.Status, &o.AccountingStatus, &o.Billed,
		&o.Posted, &o.PostedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return Order{}, err
	}
	if o.Tax, err = decimal.NewFromString(tax); err != nil {
		return Order{}, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *repository) GetOrder(ctx context.Context, id int64) (Order, error) {
	o, err := scanOrder(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM purchase_orders WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func (r *repository) CreateOrder(ctx context.Context, in Order) (Order, error) {
	status := in.Status
	if status == "" {
		status = OrderStatusDraft
	}
	acct := in.AccountingStatus
	if acct == "" {
		acct = AccountingStatusDraft
	}
	return scanOrder(r.db.Querier(ctx).QueryRow(ctx,
		`INSERT INTO purchase_orders (company_id, supplier_id, number, date, subtotal, tax, total, is_cash, status, accounting_status, billed)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING `+orderColumns,
		in.CompanyID, in.SupplierID, in.Number, in.Date,
		in.Subtotal.StringFixed(2), in.Tax.StringFixed(2), in.Total.StringFixed(2),
		in.IsCash, status, acct, in.Billed))
}

func (r *repository) ApproveOrder(ctx context.Context, id int64) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE purchase_orders SET status=$2, accounting_status=$3, updated_at=NOW() WHERE id=$1`,
		id, OrderStatusApproved, AccountingStatusReady)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) MarkOrderPosted(ctx context.Context, id int64, at time.Time) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE purchase_orders SET posted=TRUE, posted_at=$2, accounting_status=$3, updated_at=NOW() WHERE id=$1`,
		id, at, AccountingStatusPosted)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) ResetOrderPosted(ctx context.Context, id int64) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE purchase_orders SET posted=FALSE, posted_at=NULL, accounting_status=$2, updated_at=NOW() WHERE id=$1`,
		id, AccountingStatusReady)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

const paymentColumns = `id, company_id, supplier_id, order_id, number, amount::text, paid_at, is_advance, bank_account_code, posted, posted_at, created_at, updated_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	var amount string
	err := row.Scan(&p.ID, &p.CompanyID, &p.SupplierID, &p.OrderID, &p.Number, &amount,
		&p.PaidAt, &p.IsAdvance, &p.BankAccountCode, &p.Posted, &p.PostedAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Payment{}, err
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *repository) GetPayment(ctx context.Context, id int64) (Payment, error) {
	p, err := scanPayment(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM outgoing_payments WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *repository) CreatePayment(ctx context.Context, in Payment) (Payment, error) {
	return scanPayment(r.db.Querier(ctx).QueryRow(ctx,
		`INSERT INTO outgoing_payments (company_id, supplier_id, order_id, number, amount, paid_at, is_advance, bank_account_code)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING `+paymentColumns,
		in.CompanyID, in.SupplierID, in.OrderID, in.Number,
		in.Amount.StringFixed(2), in.PaidAt, in.IsAdvance, in.BankAccountCode))
}

func (r *repository) MarkPaymentPosted(ctx context.Context, id int64, at time.Time) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE outgoing_payments SET posted=TRUE, posted_at=$2, updated_at=NOW() WHERE id=$1`, id, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *repository) ResetPaymentPosted(ctx context.Context, id int64) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE outgoing_payments SET posted=FALSE, posted_at=NULL, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
