package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is used when a token's decimals field is absent or unparseable.
const DefaultDecimals = 18

// ParseBaseUnits parses a stringified integer amount of base units.
// Empty or non-integer input yields zero with defaulted=true, so callers can
// distinguish "field present and zero" from "field absent and defaulted".
func ParseBaseUnits(s string) (value decimal.Decimal, defaulted bool) {
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return decimal.Zero, true
	}
	return d, false
}

// ParseDecimals parses a stringified decimals field. Absent, unparseable, or
// negative input yields DefaultDecimals with defaulted=true.
func ParseDecimals(s string) (value int, defaulted bool) {
	if s == "" {
		return DefaultDecimals, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return DefaultDecimals, true
	}
	return n, false
}

// ParsePrice parses a stringified decimal exchange rate. Absent or unparseable
// input yields nil: a missing price propagates as "no price", never as zero.
func ParsePrice(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
