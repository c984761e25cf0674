// Package format renders money and dates for emails, receipts and exports.
package format

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency formats a whole-unit amount with thousands separators and the currency glyph.
// Example: Currency(10400, "NGN") => "₦10,400"
func Currency(amount int64, currency string) string {
	return Symbol(currency) + printer.Sprintf("%d", amount)
}

// Symbol returns the display glyph for an ISO currency code.
func Symbol(currency string) string {
	switch strings.ToUpper(currency) {
	case "NGN", "":
		return "₦"
	case "USD":
		return "$"
	case "GBP":
		return "£"
	case "EUR":
		return "€"
	default:
		return strings.ToUpper(currency) + " "
	}
}

// PlainCurrency is Currency with an ASCII code prefix, for renderers
// whose fonts cannot draw the glyph.
func PlainCurrency(amount int64, currency string) string {
	if currency == "" {
		currency = "NGN"
	}
	return strings.ToUpper(currency) + " " + printer.Sprintf("%d", amount)
}

// OrderDate is the human-readable date used in notifications and receipts.
func OrderDate(t time.Time) string {
	return t.Format("January 2, 2006 at 3:04 PM")
}
