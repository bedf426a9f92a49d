package shared

import "fmt"

// DocType enumerates the source document kinds the ledger posts from.
type DocType string

const (
	DocTypeSale       DocType = "SALE"
	DocTypePurchase   DocType = "PURCHASE"
	DocTypePaymentIn  DocType = "PAYMENT_IN"
	DocTypePaymentOut DocType = "PAYMENT_OUT"
	DocTypeExpense    DocType = "EXPENSE"
	DocTypeRefund     DocType = "REFUND"
)

// Valid reports whether the doc type is one of the known kinds.
func (d DocType) Valid() bool {
	switch d {
	case DocTypeSale, DocTypePurchase, DocTypePaymentIn, DocTypePaymentOut, DocTypeExpense, DocTypeRefund:
		return true
	}
	return false
}

// SourceRef identifies the document a journal entry was posted from. The kind
// set is closed, so the reference is a typed pair rather than an open
// polymorphic link. (kind, id) is unique across the journal.
type SourceRef struct {
	Kind DocType
	ID   int64
}

// IsZero reports whether the reference is unset.
func (s SourceRef) IsZero() bool {
	return s.Kind == "" || s.ID == 0
}

func (s SourceRef) String() string {
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}
