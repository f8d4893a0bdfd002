// Package normalize holds the pure coercion helpers every source format funnels
// through: whatever a CSV cell, spreadsheet cell, or model response contains,
// dates come out as YYYY-MM-DD and amounts as positive floats, or as "absent",
// never as an error.
package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// excelEpoch is day zero of the Excel 1900 date system. 1899-12-30 rather than
// 1899-12-31 absorbs Excel's fictitious 1900-02-29.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// isoLayouts are tried before handing off to the general parser; they cover the
// overwhelming majority of exports and avoid dateparse's US/EU ambiguity rules.
var isoLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// Date coerces a cell value to canonical YYYY-MM-DD form. Numeric input is
// treated as an Excel serial date. Unparseable input yields ok=false, not an
// error.
func Date(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case time.Time:
		if t.IsZero() {
			return "", false
		}
		return t.Format(dateLayout), true
	case float64:
		return serialDate(t)
	case int:
		return serialDate(float64(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", false
		}
		for _, layout := range isoLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.Format(dateLayout), true
			}
		}
		// Spreadsheet libraries sometimes surface serial dates as strings. A
		// number outside the serial window falls through to the general
		// parser: 20240315 is a basic-ISO date, not a serial.
		if d, err := decimal.NewFromString(s); err == nil {
			if date, ok := serialDate(d.InexactFloat64()); ok {
				return date, true
			}
		}
		if ts, err := dateparse.ParseAny(s); err == nil {
			return ts.Format(dateLayout), true
		}
		return "", false
	default:
		return "", false
	}
}

func serialDate(serial float64) (string, bool) {
	// Plausible window: 1930..2100. Anything else is a stray number, not a date.
	if serial < 10959 || serial > 73415 {
		return "", false
	}
	return excelEpoch.AddDate(0, 0, int(serial)).Format(dateLayout), true
}

// Amount coerces a cell value to a positive decimal amount. Currency symbols,
// thousands separators, and surrounding whitespace are stripped first.
// Non-positive and unparseable values yield ok=false.
func Amount(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return positive(decimal.NewFromFloat(t))
	case int:
		return positive(decimal.NewFromInt(int64(t)))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, false
		}
		return positive(d)
	default:
		return 0, false
	}
}

func positive(d decimal.Decimal) (float64, bool) {
	if !d.IsPositive() {
		return 0, false
	}
	f, _ := d.Round(2).Float64()
	return f, true
}

// Currency returns a 3-letter uppercase ISO 4217 code, defaulting to USD.
func Currency(s string) string {
	c := strings.ToUpper(strings.TrimSpace(s))
	if len(c) != 3 {
		return "USD"
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "USD"
		}
	}
	return c
}

// String trims a cell value into a plain string; non-strings become "".
func String(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
