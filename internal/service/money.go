package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCents converts a decimal string such as "12.34" to cents, rounding
// half away from zero on the third decimal place.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// FormatCents renders cents as a two-decimal string.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// CentsToFloat is used where a numeric cell or JSON number is required.
func CentsToFloat(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}
