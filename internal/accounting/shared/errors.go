package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrBothParties indicates an entry naming both a customer and a supplier.
	ErrBothParties = errors.New("accounting: entry cannot reference both customer and supplier")
	// ErrJournalNotFound indicates missing entry.
	ErrJournalNotFound = errors.New("accounting: journal entry not found")
	// ErrSourceConflict indicates the source document is already posted.
	ErrSourceConflict = errors.New("accounting: source document already linked to an entry")
	// ErrRuleNotFound indicates posting-rule configuration is missing.
	ErrRuleNotFound = errors.New("accounting: posting rule not found")
	// ErrAccountNotFound indicates a ledger account lookup failed.
	ErrAccountNotFound = errors.New("accounting: ledger account not found")
	// ErrPrecondition indicates the source document is not in a postable state.
	ErrPrecondition = errors.New("accounting: document not postable")
)

// ConfigError reports missing posting configuration for a company. It wraps
// either ErrRuleNotFound or ErrAccountNotFound so callers can branch on the
// class while the message carries the company and subject.
type ConfigError struct {
	CompanyID int64
	Subject   string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("accounting: company %d: %s", e.CompanyID, e.Subject)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// MissingRule builds a ConfigError for an absent posting rule.
func MissingRule(companyID int64, docType DocType) error {
	return &ConfigError{
		CompanyID: companyID,
		Subject:   fmt.Sprintf("no posting rule configured for %s", docType),
		Err:       ErrRuleNotFound,
	}
}

// MissingAccount builds a ConfigError for an absent ledger account code.
func MissingAccount(companyID int64, code string) error {
	return &ConfigError{
		CompanyID: companyID,
		Subject:   fmt.Sprintf("ledger account %s does not exist", code),
		Err:       ErrAccountNotFound,
	}
}
