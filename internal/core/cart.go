package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartLine is one position in a cart. UnitPrice and MaxStock are snapshots of
// the product taken when the line was last touched; the sale processor
// re-reads both from the catalog at commit time.
type CartLine struct {
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	MaxStock    int             `json:"max_stock"`
}

// Cart is the ephemeral, single-session collection of line items a vendor
// builds before checkout. It is owned by the calling session (terminal or
// browser), never persisted, and not safe for concurrent use.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart { return &Cart{} }

// AddItem puts one unit of the product into the cart. If the product already
// has a line, its quantity grows by one and its stock snapshot is refreshed;
// the cart is left unchanged when the product has no stock or the new
// quantity would exceed it.
func (c *Cart) AddItem(p Product) error {
	if p.Stock <= 0 {
		return fmt.Errorf("%w: %s", ErrOutOfStock, p.Name)
	}

	for i := range c.lines {
		if c.lines[i].ProductID != p.ID {
			continue
		}
		if c.lines[i].Quantity+1 > p.Stock {
			return fmt.Errorf("%w: %s has %d units available", ErrInsufficientStock, p.Name, p.Stock)
		}
		c.lines[i].Quantity++
		c.lines[i].MaxStock = p.Stock
		c.lines[i].UnitPrice = p.Price
		return nil
	}

	c.lines = append(c.lines, CartLine{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    1,
		MaxStock:    p.Stock,
	})
	return nil
}

// ChangeQuantity adjusts the quantity of the line at index by delta. A result
// of zero or less removes the line; exceeding the line's stock snapshot fails
// with ErrInsufficientStock and leaves the cart unchanged.
func (c *Cart) ChangeQuantity(index, delta int) error {
	if index < 0 || index >= len(c.lines) {
		return fmt.Errorf("%w: cart line %d", ErrNotFound, index)
	}

	newQty := c.lines[index].Quantity + delta
	if newQty <= 0 {
		return c.RemoveItem(index)
	}
	if newQty > c.lines[index].MaxStock {
		return fmt.Errorf("%w: %s has %d units available",
			ErrInsufficientStock, c.lines[index].ProductName, c.lines[index].MaxStock)
	}
	c.lines[index].Quantity = newQty
	return nil
}

// RemoveItem drops the line at index unconditionally.
func (c *Cart) RemoveItem(index int) error {
	if index < 0 || index >= len(c.lines) {
		return fmt.Errorf("%w: cart line %d", ErrNotFound, index)
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() { c.lines = nil }

// Total is the sum of unit price × quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Items returns a copy of the cart's lines in insertion order.
func (c *Cart) Items() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len is the number of line items (not units).
func (c *Cart) Len() int { return len(c.lines) }
