package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotOwner rejects purchases for listings the buyer does not own.
	ErrNotOwner = errors.New("listing does not belong to the buyer")
	// ErrNothingSelected rejects purchases that select no service at all.
	ErrNothingSelected = errors.New("no service selected")
)

// ValidationError marks bad or missing request fields. Surfaced verbatim to
// the caller, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// DuplicateRequestError rejects a request_id whose settled ledger entry does
// not belong to the operation being retried. Replay answers are only given
// when the entry provably is the same purchase.
type DuplicateRequestError struct {
	RequestID string
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("request_id %q already used for a different operation", e.RequestID)
}

// InsufficientFundsError carries both amounts so clients can show exactly how
// much is missing.
type InsufficientFundsError struct {
	Required decimal.Decimal
	Current  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: required %s, current %s", e.Required, e.Current)
}
