package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrProtectedTab    = errors.New("tab cannot be removed")
)

// AmountError rejects a payment and reports the largest amount that would be accepted.
type AmountError struct {
	Requested decimal.Decimal
	Ceiling   decimal.Decimal
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: must be greater than 0 and at most %s",
		e.Requested.String(), e.Ceiling.String())
}

func (e *AmountError) Unwrap() error {
	return ErrInvalidAmount
}

func itemNotFound(id string) error {
	return fmt.Errorf("item %q: %w", id, ErrNotFound)
}
