package models

import "github.com/shopspring/decimal"

// CartLine is one (product, size, color) entry in a cart.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size"`
	Color    string  `json:"color"`
}

// CartKey identifies a cart line.
type CartKey struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// Key returns the identity of the line.
func (l CartLine) Key() CartKey {
	return CartKey{ProductID: l.Product.ID, Size: l.Size, Color: l.Color}
}

// LineTotal is quantity times the product's current price.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
