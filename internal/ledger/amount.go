package ledger

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// plainDecimal is the only syntax handed to the decimal parser once the
// separators are normalised. Exponents are rejected: "1e20000000" would
// otherwise become a twenty-million digit number.
var plainDecimal = regexp.MustCompile(`^-?(\d{1,15}(\.\d{1,8})?|\.\d{1,8})$`)

// ParseAmount parses user input into a non-negative decimal amount.
//
// Both decimal separators are accepted; when a string contains both, the
// last one is the decimal separator and the other groups thousands:
//
//	"12.34"    -> 12.34
//	"12,34"    -> 12.34
//	"1.234,56" -> 1234.56
//	"1,234.56" -> 1234.56
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseSignedAmount(s)
	if err != nil {
		return decimal.Zero, err
	}

	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount %q is negative", ErrInvalidInput, s)
	}

	return d, nil
}

// ParseSignedAmount accepts the same input as ParseAmount but keeps the sign,
// leaving range checks to the operation that receives the value.
func ParseSignedAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimSuffix(strings.TrimPrefix(clean, "€"), "€")
	clean = strings.ReplaceAll(strings.TrimSpace(clean), " ", "")

	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidInput)
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0:
		clean = strings.Replace(clean, ",", ".", 1)
	}

	if !plainDecimal.MatchString(clean) {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrInvalidInput, s)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrInvalidInput, s)
	}

	return d, nil
}
