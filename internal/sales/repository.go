package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dentex-erp/dentex-erp/internal/platform/db"
)

var (
	ErrInvoiceNotFound = errors.New("sales: invoice not found")
	ErrPaymentNotFound = errors.New("sales: payment not found")
)

// Repository persists invoices and incoming payments. Posted-flag updates are
// field-scoped so posting never clobbers concurrent edits to other columns.
type Repository interface {
	GetInvoice(ctx context.Context, id int64) (Invoice, error)
	CreateInvoice(ctx context.Context, in Invoice) (Invoice, error)
	SetInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error
	MarkInvoicePosted(ctx context.Context, id int64, at time.Time) error
	ResetInvoicePosted(ctx context.Context, id int64) error

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

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var subtotal, tax, total string
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.Number, &inv.Date,
		&subtotal, &tax, &total, &inv.IsCash, &inv.Status, &inv.Posted, &inv.PostedAt,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return Invoice{}, err
	}
	if inv.Tax, err = decimal.NewFromString(tax); err != nil {
		return Invoice{}, err
	}
	if inv.Total, err = decimal.NewFromString(total); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

const invoiceColumns = `id, company_id, customer_id, number, date, subtotal::text, tax::text, total::text, is_cash, status, posted, posted_at, created_at, updated_at`

func (r *repository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM sales_invoices WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *repository) CreateInvoice(ctx context.Context, in Invoice) (Invoice, error) {
	status := in.Status
	if status == "" {
		status = InvoiceStatusDraft
	}
	return scanInvoice(r.db.Querier(ctx).QueryRow(ctx,
		`INSERT INTO sales_invoices (company_id, customer_id, number, date, subtotal, tax, total, is_cash, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING `+invoiceColumns,
		in.CompanyID, in.CustomerID, in.Number, in.Date,
		in.Subtotal.StringFixed(2), in.Tax.StringFixed(2), in.Total.StringFixed(2),
		in.IsCash, status))
}

func (r *repository) SetInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE sales_invoices SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *repository) MarkInvoicePosted(ctx context.Context, id int64, at time.Time) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE sales_invoices SET posted=TRUE, posted_at=$2, status=$3, updated_at=NOW() WHERE id=$1`,
		id, at, InvoiceStatusCompleted)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *repository) ResetInvoicePosted(ctx context.Context, id int64) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE sales_invoices SET posted=FALSE, posted_at=NULL, status=$2, updated_at=NOW() WHERE id=$1`,
		id, InvoiceStatusApproved)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	var amount string
	err := row.Scan(&p.ID, &p.CompanyID, &p.CustomerID, &p.InvoiceID, &p.Number, &amount,
		&p.ReceivedAt, &p.Status, &p.FinancialAccountID, &p.Posted, &p.PostedAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Payment{}, err
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return Payment{}, err
	}
	return p, nil
}

const paymentColumns = `id, company_id, customer_id, invoice_id, number, amount::text, received_at, status, financial_account_id, posted, posted_at, created_at, updated_at`

func (r *repository) GetPayment(ctx context.Context, id int64) (Payment, error) {
	p, err := scanPayment(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM incoming_payments WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *repository) CreatePayment(ctx context.Context, in Payment) (Payment, error) {
	status := in.Status
	if status == "" {
		status = PaymentStatusPending
	}
	return scanPayment(r.db.Querier(ctx).QueryRow(ctx,
		`INSERT INTO incoming_payments (company_id, customer_id, invoice_id, number, amount, received_at, status, financial_account_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING `+paymentColumns,
		in.CompanyID, in.CustomerID, in.InvoiceID, in.Number,
		in.Amount.StringFixed(2), in.ReceivedAt, status, in.FinancialAccountID))
}

// MarkPaymentPosted flips the posted flag and completes a pending or
// processing payment; completed payments keep their status.
func (r *repository) MarkPaymentPosted(ctx context.Context, id int64, at time.Time) error {
	cmd, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE incoming_payments
SET posted=TRUE, posted_at=$2,
    status=CASE WHEN status IN ('pending','processing') THEN 'completed' ELSE status END,
    updated_at=NOW()
WHERE id=$1`, id, at)
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
		`UPDATE incoming_payments
SET posted=FALSE, posted_at=NULL,
    status=CASE WHEN status='completed' THEN 'pending' ELSE status END,
    updated_at=NOW()
WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
