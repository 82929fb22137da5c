package models

import "math"

// CartItem is a line held in the shopper's cart. Carts live on the client;
// the server only rebuilds them from submitted lines.
type CartItem struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"required,gt=0"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
}

// Cart is an ordered list of lines keyed by product id.
type Cart struct {
	Items []CartItem `json:"items"`
}

// NewCartFromLines builds a cart from submitted lines. Repeated lines for the
// same product and unit price are merged, summing quantities; a repeated
// product at a different price stays a separate line so the total always
// equals the sum of what was submitted.
func NewCartFromLines(lines []CartItem) *Cart {
	c := &Cart{Items: make([]CartItem, 0, len(lines))}
	for _, line := range lines {
		merged := false
		for i := range c.Items {
			if c.Items[i].ProductID == line.ProductID && c.Items[i].Price == line.Price {
				c.Items[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, line)
		}
	}
	return c
}

// Add puts one unit of item in the cart. An existing line gains exactly one
// unit; a new line starts at quantity 1.
func (c *Cart) Add(item CartItem) {
	if i := c.indexOf(item.ProductID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

// Remove deletes the line for productID, if any.
func (c *Cart) Remove(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	c.Items[i].Quantity = quantity
}

func (c *Cart) Clear() {
	c.Items = c.Items[:0]
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// AmountInCents converts the cart total to the smallest currency unit.
func (c *Cart) AmountInCents() int64 {
	return int64(math.Round(c.Total() * 100))
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
