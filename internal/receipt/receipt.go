package receipt

import (
	"time"

	"github.com/shopspring/decimal"

	"westernpos/m/domain"
	"westernpos/m/internal/money"
)

// DateLayout is how the purchase time appears on a receipt.
const DateLayout = "2/01/2006, 03:04:05"

// Header holds the store details printed at the top of a receipt.
type Header struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type Item struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// Receipt is the printable form of a finalized sale. Amounts are already
// formatted for display.
type Receipt struct {
	Header          Header `json:"header"`
	SaleID          int64  `json:"sale_id"`
	Date            string `json:"date"`
	CustomerName    string `json:"customer_name"`
	CustomerContact string `json:"customer_contact"`
	PaymentMethod   string `json:"payment_method"`
	SalesRep        string `json:"sales_rep"`
	Items           []Item `json:"items"`
	SubTotal        string `json:"sub_total"`
	VAT             string `json:"vat"`
	Total           string `json:"total"`
}

// Build composes a receipt from a persisted sale. The VAT line is whatever the
// total carries above the item subtotals, so reprints match the original.
func Build(h Header, sale domain.Sale, items []domain.SaleItem, cashier string, loc *time.Location) Receipt {
	if loc == nil {
		loc = time.Local
	}
	date := sale.PurchaseTime
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", sale.PurchaseTime, time.UTC); err == nil {
		date = t.In(loc).Format(DateLayout)
	}

	subtotal := decimal.Zero
	lines := make([]Item, 0, len(items))
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalCost)
		lines = append(lines, Item{Name: it.ProductName, Quantity: it.Quantity, Subtotal: money.Format(it.TotalCost)})
	}
	vat := decimal.Zero
	if sale.IncludesVAT {
		vat = sale.TotalPrice.Sub(subtotal)
	}

	return Receipt{
		Header:          h,
		SaleID:          sale.ID,
		Date:            date,
		CustomerName:    sale.CustomerName,
		CustomerContact: sale.CustomerContact,
		PaymentMethod:   sale.PaymentMethod,
		SalesRep:        cashier,
		Items:           lines,
		SubTotal:        money.Format(subtotal),
		VAT:             money.Format(vat),
		Total:           money.Format(sale.TotalPrice),
	}
}

// Render lays the receipt out as an ESC/POS stream for a printer that is
// width characters wide.
func Render(r Receipt, width int) []byte {
	d := NewDocument(width)

	d.SetAlign(AlignCenter).SetBold(true).SetFontSize(FontDouble).Text(r.Header.StoreName).SetFontSize(FontNormal).SetBold(false)
	if r.Header.Address != "" {
		d.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		d.Text(r.Header.Phone)
	}
	d.SetAlign(AlignLeft).Separator('-')

	d.KeyValue("Sale", itoa(r.SaleID)).
		KeyValue("Date", r.Date).
		KeyValue("Customer", r.CustomerName).
		KeyValue("Contact", r.CustomerContact).
		KeyValue("Payment", r.PaymentMethod).
		KeyValue("Sales rep", r.SalesRep).
		Separator('-')

	for _, it := range r.Items {
		d.ItemLine(it.Quantity, it.Name, it.Subtotal)
	}
	d.Separator('-').
		KeyValue("Subtotal", r.SubTotal).
		KeyValue("VAT", r.VAT).
		SetBold(true).KeyValue("Total", r.Total).SetBold(false).
		FeedLines(3).
		PartialCut()
	return d.Bytes()
}
