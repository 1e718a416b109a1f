package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

// amount accepts 12.5, "12.50" and "12,50".
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalJSON(b []byte) error {
	return unmarshalAmount(b, &a.Decimal, ledger.ParseAmount)
}

// paymentAmount keeps the sign so that the payment operations report
// non-positive values as an amount error with the ceiling.
type paymentAmount struct {
	decimal.Decimal
}

func (a *paymentAmount) UnmarshalJSON(b []byte) error {
	return unmarshalAmount(b, &a.Decimal, ledger.ParseSignedAmount)
}

func unmarshalAmount(b []byte, dst *decimal.Decimal, parse func(string) (decimal.Decimal, error)) error {
	raw := string(bytes.TrimSpace(b))

	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}

	d, err := parse(raw)
	if err != nil {
		return err
	}

	*dst = d

	return nil
}

type addItemRequest struct {
	Name   string  `json:"name"`
	Amount *amount `json:"amount"`
}

func (r addItemRequest) validate() error {
	if r.Amount == nil {
		return fmt.Errorf("%w: amount is required", ledger.ErrInvalidInput)
	}

	return nil
}

type editItemRequest struct {
	Name   *string `json:"name,omitempty"`
	Amount *amount `json:"amount,omitempty"`
}

type paymentRequest struct {
	Amount *paymentAmount `json:"amount"`
}

func (r paymentRequest) validate() error {
	if r.Amount == nil {
		return fmt.Errorf("%w: amount is required", ledger.ErrInvalidInput)
	}

	return nil
}

type noteRequest struct {
	Note string `json:"note"`
}
