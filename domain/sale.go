package domain

import "github.com/shopspring/decimal"

type Sale struct {
	ID              int64           `db:"id" json:"id"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerContact string          `db:"customer_contact" json:"customer_contact"`
	PurchaseTime    string          `db:"purchase_time" json:"purchase_time"`
	TotalPrice      decimal.Decimal `db:"total_price" json:"total_price"`
	TotalRevenue    decimal.Decimal `db:"total_revenue" json:"total_revenue"`
	PaymentMethod   string          `db:"payment_method" json:"payment_method"`
	SalesRep        int64           `db:"sales_rep" json:"sales_rep"`
	IncludesVAT     bool            `db:"includes_vat" json:"includes_vat"`
}

type SaleItem struct {
	ID          int64           `db:"id" json:"id"`
	ProductName string          `db:"product_name" json:"product_name"`
	UnitCost    decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	TotalCost   decimal.Decimal `db:"total_cost" json:"total_cost"`
	SaleID      int64           `db:"sale" json:"sale"`
	ProductID   int64           `db:"product" json:"product"`
}
