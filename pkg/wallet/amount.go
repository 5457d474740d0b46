package wallet

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not positive decimals.
var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// ToCents converts a decimal USD string into the integer passed to Transfer:
// round(amount * 100), half away from zero. "0.235" yields 24.
//
// The result is in cents while balances are reported in the token's 6-decimal
// base units. The two scales are not reconciled here.
func ToCents(amount string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q", amount)
	}
	if !d.IsPositive() {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q must be greater than zero", amount)
	}
	return d.Mul(hundred).Round(0).IntPart(), nil
}

// FormatCents renders cents as a dollar string, e.g. 24 -> "$0.24".
func FormatCents(cents int64) string {
	return "$" + decimal.New(cents, -2).StringFixed(2)
}

// FormatBaseUnits renders a base-unit amount as whole tokens. Unparseable
// amounts are returned unchanged.
func FormatBaseUnits(amount string, decimals int32) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	return d.Shift(-decimals).String()
}
