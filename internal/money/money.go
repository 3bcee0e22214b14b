// Package money converts between the integer minor-unit amounts the
// engine stores and the decimal strings humans type and read. The engine
// itself never does fractional arithmetic; parsing and formatting are the
// only places a decimal point exists.
package money

import (
	"fmt"
	"math"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// currencyOf resolves an ISO 4217 code. Codes go-money does not know get
// a generic two-decimal treatment with the code as the symbol.
func currencyOf(code string) *gomoney.Currency {
	if c := gomoney.GetCurrency(code); c != nil {
		return c
	}
	return &gomoney.Currency{
		Code:     code,
		Fraction: 2,
		Decimal:  ".",
		Thousand: ",",
		Grapheme: code + " ",
		Template: "$1",
	}
}

// ParseAmount converts a decimal amount string like "12.34" into minor
// units of the given currency. Amounts with more fractional digits than
// the currency carries are rejected rather than rounded.
func ParseAmount(s, code string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	fraction := int32(currencyOf(code).Fraction)
	shifted := d.Shift(fraction)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, fraction)
	}
	if shifted.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	return shifted.IntPart(), nil
}

// Format renders minor units for display, e.g. Format(123456, "USD")
// returns "$1,234.56".
func Format(minor int64, code string) string {
	return currencyOf(code).Formatter().Format(minor)
}
