// Package cart holds the visitor's line items and the totals derived from them.
package cart

import "github.com/01moynul/hidaaya-golang/internal/models"

// Item is a single line in the cart. Product is the snapshot taken when the
// line was added; it is what checkout charges.
type Item struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

// ProductSnapshot is the subset of a product the cart needs.
type ProductSnapshot struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    int64           `json:"price"`
	Category models.Category `json:"category"`
	Image    string          `json:"image"`
}

// Snapshot copies the fields the cart keeps from a catalog product.
func Snapshot(p models.Product) ProductSnapshot {
	return ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Image:    p.Image,
	}
}

// LineTotal is price × quantity.
func (i Item) LineTotal() int64 {
	return i.Product.Price * int64(i.Quantity)
}

// Cart is an ordered list of line items, at most one per product id.
// The zero value is an empty cart. Cart is not safe for concurrent use;
// each request loads its own copy from the visitor's session.
type Cart struct {
	items []Item
}

// New builds a cart from previously stored items, merging duplicates and
// dropping lines with a quantity below one.
func New(items []Item) *Cart {
	c := &Cart{}
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		c.Add(it.Product, it.Quantity)
	}
	return c
}

// Add merges qty into the existing line for the product, or appends a new line.
func (c *Cart) Add(p ProductSnapshot, qty int) {
	if qty < 1 {
		return
	}
	for i := range c.items {
		if c.items[i].Product.ID == p.ID {
			c.items[i].Quantity += qty
			return
		}
	}
	c.items = append(c.items, Item{Product: p, Quantity: qty})
}

// UpdateQuantity sets the quantity of a line. A quantity below one removes it.
// It reports whether a line for productID existed.
func (c *Cart) UpdateQuantity(productID string, qty int) bool {
	if qty < 1 {
		return c.Remove(productID)
	}
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = qty
			return true
		}
	}
	return false
}

// Remove drops the line for productID and reports whether it existed.
func (c *Cart) Remove(productID string) bool {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

// TotalItems is the sum of quantities.
func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Subtotal is the sum of price × quantity over every line.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.items {
		total += it.LineTotal()
	}
	return total
}

// OrderItems converts the lines into order item snapshots.
func (c *Cart) OrderItems() []models.OrderItem {
	out := make([]models.OrderItem, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, models.NewOrderItem(it.Product.ID, it.Product.Name, it.Product.Price, it.Quantity))
	}
	return out
}
