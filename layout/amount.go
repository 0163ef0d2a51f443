package layout

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders minor units as a grouped, zero-decimal amount
// behind the currency glyph: FormatAmount(3000, "$") == "$3,000".
func FormatAmount(amount uint64, currency string) string {
	return currency + amountPrinter.Sprintf("%d", amount)
}
