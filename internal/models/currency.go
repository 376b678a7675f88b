package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyCode is the only currency invoices are issued in
const CurrencyCode = "LKR"

var (
	smallNumberWords = []string{
		"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tensWords = []string{
		"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
	}
	scaleWords = []struct {
		value int64
		name  string
	}{
		{1_000_000_000_000, "Trillion"},
		{1_000_000_000, "Billion"},
		{1_000_000, "Million"},
		{1_000, "Thousand"},
	}
)

// FormatLKR renders an amount as "Rs. 11,750.00", rounded half-up to the cent
func FormatLKR(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	return "Rs. " + sign + groupThousands(intPart) + "." + fracPart
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// AmountInWords spells out an amount for the printed invoice, e.g.
// "One Hundred One Rupees Only" or
// "Eleven Thousand Seven Hundred Fifty Rupees and Fifty Cents".
// Cents are rounded half-up first and omitted when zero. Exactly one rupee or
// cent takes the singular.
func AmountInWords(amount decimal.Decimal) string {
	rounded := amount.Round(2)

	prefix := ""
	if rounded.IsNegative() {
		prefix = "Minus "
		rounded = rounded.Neg()
	}

	rupees := rounded.Truncate(0)
	cents := rounded.Sub(rupees).Shift(2).IntPart()

	words := prefix + integerToWords(rupees.IntPart()) + " " + plural(rupees.IntPart(), "Rupee")
	if cents == 0 {
		return words + " Only"
	}
	return words + " and " + integerToWords(cents) + " " + plural(cents, "Cent")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

func integerToWords(n int64) string {
	if n == 0 {
		return "Zero"
	}

	parts := make([]string, 0, 8)
	for _, scale := range scaleWords {
		if n >= scale.value {
			parts = append(parts, integerToWords(n/scale.value), scale.name)
			n %= scale.value
		}
	}
	if n > 0 {
		parts = append(parts, hundredsToWords(n))
	}
	return strings.Join(parts, " ")
}

// hundredsToWords handles 1..999 without "and" between hundreds and tens
func hundredsToWords(n int64) string {
	parts := make([]string, 0, 3)

	if n >= 100 {
		parts = append(parts, smallNumberWords[n/100], "Hundred")
		n %= 100
	}

	switch {
	case n >= 20:
		parts = append(parts, tensWords[n/10])
		if n%10 > 0 {
			parts = append(parts, smallNumberWords[n%10])
		}
	case n > 0:
		parts = append(parts, smallNumberWords[n])
	}

	return strings.Join(parts, " ")
}
