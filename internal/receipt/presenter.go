package receipt

import (
	"time"

	"westernpos/m/domain"
)

// Presenter turns finalized sales into receipts and prints them.
type Presenter struct {
	header  Header
	printer Printer
	width   int
	loc     *time.Location
}

func NewPresenter(h Header, p Printer, width int) *Presenter {
	return &Presenter{header: h, printer: p, width: width, loc: time.Local}
}

func (p *Presenter) Build(sale domain.Sale, items []domain.SaleItem, cashier string) Receipt {
	return Build(p.header, sale, items, cashier, p.loc)
}

func (p *Presenter) Print(r Receipt) error {
	return p.printer.Print(Render(r, p.width))
}
