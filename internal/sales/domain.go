package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enumerates the sales invoice lifecycle.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusApproved  InvoiceStatus = "approved"
	InvoiceStatusCompleted InvoiceStatus = "completed"
)

// PaymentStatus enumerates incoming payment states.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
)

// Invoice is a customer sale. Subtotal+Tax=Total is computed at creation and
// not re-validated by the posting engine.
type Invoice struct {
	ID         int64
	CompanyID  int64
	CustomerID int64
	Number     string
	Date       time.Time
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	IsCash     bool
	Status     InvoiceStatus
	Posted     bool
	PostedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Payment is money received from a customer, optionally against an invoice.
// Company and customer may be blank and are then resolved from the invoice.
type Payment struct {
	ID                 int64
	CompanyID          int64
	CustomerID         *int64
	InvoiceID          *int64
	Number             string
	Amount             decimal.Decimal
	ReceivedAt         time.Time
	Status             PaymentStatus
	FinancialAccountID *int64
	Posted             bool
	PostedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
