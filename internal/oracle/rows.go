package oracle

import (
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"
)

// decimalTypes lists the reference engine's column type names that carry
// binary-float or fixed-point values requiring round-half-up re-rounding: the
// reference engine's default numeric formatting is not round-half-up, so
// naive string passthrough would diverge from the SUT on values like 0.625.
var decimalTypes = map[string]bool{
	"DECIMAL":    true,
	"NEWDECIMAL": true,
	"FLOAT":      true,
	"DOUBLE":     true,
}

// renderCell implements the reference engine's cell rendering rules:
//   - NULL -> "NULL"
//   - integer -> decimal, no padding (already the driver's string form)
//   - floating/decimal -> round-half-up to two fractional digits, then
//     trailing zeros and a trailing '.' stripped
//   - date -> YYYY-MM-DD, zero-padded (already the driver's string form)
//   - string -> as-is
func renderCell(v sql.NullString, dbType string) string {
	if !v.Valid {
		return "NULL"
	}
	if decimalTypes[dbType] {
		return roundHalfUpTrim(v.String)
	}
	return v.String
}

// roundHalfUpTrim rounds a decimal string to two fractional digits using
// round-half-up (decimal.Decimal.Round rounds half away from zero, which
// coincides with round-half-up for the non-negative magnitudes this harness
// deals with), then strips trailing zeros and a trailing
// dot: 0.625 -> 0.63, 1.100 -> 1.1, 2.0 -> 2.
func roundHalfUpTrim(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	rounded := d.Round(2).String()
	if strings.Contains(rounded, ".") {
		rounded = strings.TrimRight(rounded, "0")
		rounded = strings.TrimRight(rounded, ".")
	}
	return rounded
}
