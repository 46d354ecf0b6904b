// Package report renders valuations as markdown, terminal tables, SVG charts
// and a static HTML page.
package report

import (
	"math"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// NotAvailable is printed in place of a price that could not be fetched.
const NotAvailable = "n/a"

// Money formats v in currency, rounded half away from zero to the currency's
// minor unit. Unknown currency codes fall back to two decimals.
func Money(v float64, currency string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return decimal.NewFromFloat(v).StringFixed(2)
	}
	fraction := int32(cur.Fraction)
	amount := decimal.NewFromFloat(v).Round(fraction).Shift(fraction)
	return money.New(amount.IntPart(), currency).Display()
}

// Price formats a quote, or NotAvailable when it is unpriced.
func Price(v float64, priced bool, currency string) string {
	if !priced {
		return NotAvailable
	}
	return Money(v, currency)
}

// Percent formats a ratio as a percentage with two decimals: 0.2 is "20.00%".
func Percent(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return strconv.FormatFloat(ratio, 'f', -1, 64)
	}
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(2) + "%"
}

// Shares formats a share count without float noise.
func Shares(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).String()
}
