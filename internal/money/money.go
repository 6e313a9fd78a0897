package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol is the currency sign printed in front of amounts.
const Symbol = "₦"

// VATRate is the flat VAT surcharge applied on a sale subtotal.
var VATRate = decimal.RequireFromString("0.075")

// VAT returns the VAT due on amount, rounded half away from zero to kobo.
func VAT(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(VATRate).Round(2)
}

// Format renders an amount as "₦1,234.50".
func Format(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + Symbol + group(whole) + "." + frac
}

func group(digits string) string {
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
