package helpers

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// ErrNonPositiveAmount is returned for zero or negative amounts
	ErrNonPositiveAmount = errors.New("amount must be greater than 0")
	// ErrTooPrecise is returned when an amount has more fractional digits than the asset
	ErrTooPrecise = errors.New("amount has too many decimal places")
)

// ParseAmount parses a user supplied decimal amount such as "0.25".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	return d, nil
}

// ToBaseUnits scales a positive decimal amount by 10^decimals.
// "0.5" with 18 decimals becomes 500000000000000000.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	scaled := amount.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, ErrTooPrecise
	}
	return scaled.BigInt(), nil
}

// FromBaseUnits converts base units back into a decimal amount
func FromBaseUnits(base *big.Int, decimals int32) decimal.Decimal {
	if base == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(base, -decimals)
}

// FormatToken formats a base-unit balance with 4 decimals and the symbol
func FormatToken(base *big.Int, decimals uint8, symbol string) string {
	places := int32(4)
	if symbol == "ETH" {
		places = 6
	}
	return FromBaseUnits(base, int32(decimals)).StringFixed(places) + " " + symbol
}
