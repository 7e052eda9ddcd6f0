package models

import (
	"math"
	"time"
)

// LineItem is one menu item in a cart or order
type LineItem struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Notes     string  `json:"notes,omitempty"`
}

// LineTotal returns quantity times unit price
func (l LineItem) LineTotal() float64 {
	return roundMoney(float64(l.Quantity) * l.UnitPrice)
}

// Cart holds items a customer intends to order
type Cart struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Subtotal sums every line of the cart
func (c Cart) Subtotal() float64 {
	return SumLines(c.Items)
}

// SumLines totals a list of line items
func SumLines(lines []LineItem) float64 {
	var total float64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return roundMoney(total)
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// AddItemRequest asks for a menu item to be added to a cart or order
type AddItemRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Size     string `json:"size,omitempty" binding:"omitempty,max=20"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=20"`
	Notes    string `json:"notes,omitempty" binding:"max=200"`
}

// UpdateItemRequest changes the quantity of a cart line. Zero removes it.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=20"`
}
