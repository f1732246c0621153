// internal/scraper/currency.go
package scraper

import "strings"

var currencySymbols = map[string]string{
	"$":   "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"₹":   "INR",
	"US$": "USD",
	"R$":  "BRL",
}

// NormalizeCurrency maps a scraped currency symbol or code onto a 3-letter
// code. Everything past this boundary can assume a 3-letter code.
func NormalizeCurrency(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "USD"
	}
	if code, ok := currencySymbols[raw]; ok {
		return code
	}
	upper := strings.ToUpper(raw)
	if code, ok := currencySymbols[upper]; ok {
		return code
	}
	if len(upper) == 3 {
		return upper
	}
	return "USD"
}
