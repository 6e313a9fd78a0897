package cart

import (
	"github.com/shopspring/decimal"

	"westernpos/m/internal/money"
)

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	VAT         decimal.Decimal `json:"vat"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	IncludesVAT bool            `json:"includes_vat"`
	ItemCount   int             `json:"item_count"`
}

// Compute derives the totals of lines. Lines with a zero quantity count toward
// ItemCount but not toward any amount.
func Compute(lines []Line, includeVAT bool) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity > 0 {
			subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
		}
	}
	t := Totals{
		Subtotal:    subtotal,
		VAT:         decimal.Zero,
		GrandTotal:  subtotal,
		IncludesVAT: includeVAT,
		ItemCount:   len(lines),
	}
	if includeVAT {
		t.VAT = money.VAT(subtotal)
		t.GrandTotal = subtotal.Add(t.VAT)
	}
	return t
}
