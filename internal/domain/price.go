package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const wonSymbol = "₩"

var pricePrinter = message.NewPrinter(language.Korean)

// FormatPrice renders price in won with grouped digits, e.g. ₩15,000. The
// fractional part is truncated toward zero.
func FormatPrice(price float64) string {
	return wonSymbol + pricePrinter.Sprintf("%d", int64(price))
}
