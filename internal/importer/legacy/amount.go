package legacy

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads "1234.5", "-588,74", "1.234,56" and "$ 1,200.00".
// When both separators appear the last one is the decimal point; a lone
// comma is a decimal comma.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", " ", "", " ", "").Replace(strings.TrimSpace(s))

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case lastDot > lastComma:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
