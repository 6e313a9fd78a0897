package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	CostPrice    decimal.Decimal `db:"cost_price" json:"cost_price"`
	SellingPrice decimal.Decimal `db:"selling_price" json:"selling_price"`
	IsDeleted    bool            `db:"is_deleted" json:"-"`
}

// Revenue is the margin earned on one unit.
func (p Product) Revenue() decimal.Decimal {
	return p.SellingPrice.Sub(p.CostPrice)
}

// Sellable reports whether the product can be put on a cart. The zero-valued
// lookup fallback is never sellable.
func (p Product) Sellable() bool {
	return p.ID > 0 && p.Quantity > 0 && p.SellingPrice.IsPositive()
}
