package purchasing

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the purchase order lifecycle.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusCompleted OrderStatus = "completed"
)

// AccountingStatus tracks the ledger-side state separately from the
// operational status; some historical documents carry DRAFT here even after
// operational approval.
type AccountingStatus string

const (
	AccountingStatusDraft  AccountingStatus = "DRAFT"
	AccountingStatusReady  AccountingStatus = "READY"
	AccountingStatusPosted AccountingStatus = "POSTED"
)

// Order is a supplier purchase. Billed reports whether a vendor bill has been
// received; payments made before that are treated as advances.
type Order struct {
	ID               int64
	CompanyID        int64
	SupplierID       int64
	Number           string
	Date             time.Time
	Subtotal         decimal.Decimal
	Tax              decimal.Decimal
	Total            decimal.Decimal
	IsCash           bool
	Status           OrderStatus
	AccountingStatus AccountingStatus
	Billed           bool
	Posted           bool
	PostedAt         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Payment is money paid to a supplier, optionally against an order. An
// explicit IsAdvance flag or an unbilled order routes the debit to the vendor
// advances account. BankAccountCode overrides the default settlement account.
type Payment struct {
	ID              int64
	CompanyID       int64
	SupplierID      *int64
	OrderID         *int64
	Number          string
	Amount          decimal.Decimal
	PaidAt          time.Time
	IsAdvance       bool
	BankAccountCode string
	Posted          bool
	PostedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
