package components

import "fmt"

// currencySymbols maps common display currencies to their symbol.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "C$",
	"AUD": "A$",
	"BRL": "R$",
	"INR": "₹",
}

// FormatMoney renders an amount with the currency symbol when one is
// known, falling back to an ISO code suffix.
func FormatMoney(amount float64, currency string) string {
	if symbol, ok := currencySymbols[currency]; ok {
		return fmt.Sprintf("%s%.2f", symbol, amount)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}

// FormatDelta renders a daily earning delta with an explicit sign.
func FormatDelta(amount float64, currency string) string {
	if amount > 0 {
		return "+" + FormatMoney(amount, currency)
	}
	return FormatMoney(amount, currency)
}
