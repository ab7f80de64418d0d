package views

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Number formats v with grouping separators and the given number of decimals.
func Number(v float64, decimals int) string {
	return printer.Sprint(number.Decimal(v, number.Scale(decimals)))
}

// Yield formats a predicted yield in tonnes per hectare.
func Yield(v *float64) string {
	if v == nil {
		return "Pending"
	}
	return Number(*v, 2) + " t/ha"
}

// Date formats the timestamp for tables (UTC).
func Date(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format("Jan 2, 2006 15:04")
}
