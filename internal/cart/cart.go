package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"westernpos/m/domain"
)

var (
	ErrNotSellable     = errors.New("product cannot be sold")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrOutOfStock      = errors.New("all stock of this product is already on the cart")
)

// Line is one product on the cart. Price, name and revenue are snapshots taken
// when the product was added.
type Line struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	MaxQuantity int64           `json:"max_quantity"`
	Stock       int64           `json:"stock"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	UnitRevenue decimal.Decimal `json:"unit_revenue"`
	// Clamped is set when the requested quantity was cut down to MaxQuantity.
	Clamped bool `json:"clamped"`
}

// Persistable reports whether the line is written out when the sale completes.
func (l Line) Persistable() bool {
	return l.Quantity > 0 && l.UnitPrice.IsPositive()
}

// Revenue is the margin earned on the whole line.
func (l Line) Revenue() decimal.Decimal {
	return l.UnitRevenue.Mul(decimal.NewFromInt(l.Quantity))
}

func (l *Line) setQuantity(q int64) {
	l.Clamped = false
	if q > l.MaxQuantity {
		q = l.MaxQuantity
		l.Clamped = true
	}
	l.Quantity = q
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(q))
}

// Cart is the ordered list of lines of one sale screen. It is not safe for
// concurrent use; callers serialize access per screen.
type Cart struct {
	lines      []Line
	includeVAT bool
	totals     Totals
}

func New() *Cart {
	c := &Cart{}
	c.recompute()
	return c
}

// AddLine appends product with the requested quantity clamped into
// [1, available], where available is the product's stock less what other
// lines of the same product already hold.
func (c *Cart) AddLine(p domain.Product, quantity int64) (Line, error) {
	if !p.Sellable() {
		return Line{}, ErrNotSellable
	}
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Stock = p.Quantity
		}
	}
	available := p.Quantity - c.reserved(p.ID, uuid.Nil)
	if available < 1 {
		return Line{}, ErrOutOfStock
	}
	if quantity < 1 {
		quantity = 1
	}
	line := Line{
		ID:          uuid.New(),
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.SellingPrice,
		MaxQuantity: available,
		Stock:       p.Quantity,
		UnitRevenue: p.Revenue(),
	}
	line.setQuantity(quantity)
	c.lines = append(c.lines, line)
	c.refreshLimits(p.ID)
	c.recompute()
	return line, nil
}

// SetQuantity edits a line. Zero keeps the line on the cart but out of the
// totals; anything above the line's maximum is clamped.
func (c *Cart) SetQuantity(id uuid.UUID, quantity int64) (Line, error) {
	if quantity < 0 {
		return Line{}, ErrInvalidQuantity
	}
	i := c.index(id)
	if i < 0 {
		return Line{}, ErrLineNotFound
	}
	l := &c.lines[i]
	l.MaxQuantity = max(l.Stock-c.reserved(l.ProductID, l.ID), 0)
	l.setQuantity(quantity)
	c.refreshLimits(l.ProductID)
	c.recompute()
	return c.lines[i], nil
}

func (c *Cart) RemoveLine(id uuid.UUID) error {
	i := c.index(id)
	if i < 0 {
		return ErrLineNotFound
	}
	productID := c.lines[i].ProductID
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.refreshLimits(productID)
	c.recompute()
	return nil
}

func (c *Cart) SetIncludeVAT(on bool) {
	c.includeVAT = on
	c.recompute()
}

func (c *Cart) IncludesVAT() bool {
	return c.includeVAT
}

// Clear empties the cart after a sale completes or is discarded.
func (c *Cart) Clear() {
	c.lines = nil
	c.includeVAT = false
	c.recompute()
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Totals returns the snapshot computed on the last mutation.
func (c *Cart) Totals() Totals {
	return c.totals
}

// Partition splits the lines into those that are persisted on completion and
// those that are dropped (quantity 0).
func (c *Cart) Partition() (keep, dropped []Line) {
	for _, l := range c.lines {
		if l.Persistable() {
			keep = append(keep, l)
		} else {
			dropped = append(dropped, l)
		}
	}
	return keep, dropped
}

func (c *Cart) index(id uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// reserved is the quantity of productID held by lines other than exclude.
func (c *Cart) reserved(productID int64, exclude uuid.UUID) int64 {
	var n int64
	for _, l := range c.lines {
		if l.ProductID == productID && l.ID != exclude {
			n += l.Quantity
		}
	}
	return n
}

// refreshLimits resets MaxQuantity on every line of productID so the lines
// together never exceed the product's stock.
func (c *Cart) refreshLimits(productID int64) {
	for i := range c.lines {
		l := &c.lines[i]
		if l.ProductID == productID {
			l.MaxQuantity = max(l.Stock-c.reserved(productID, l.ID), 0)
		}
	}
}

func (c *Cart) recompute() {
	c.totals = Compute(c.lines, c.includeVAT)
}
