package services

import (
	"github.com/Govind-619/Clomora/cart"
	"github.com/Govind-619/Clomora/models"
	"github.com/shopspring/decimal"
)

// Pricing turns cart lines into order totals.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// DefaultPricing ships free at or above ₹999 and charges ₹99 below it.
func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(999),
		FlatShippingFee:       decimal.NewFromInt(99),
	}
}

// Shipping is free at or above the threshold and for an empty cart.
func (p Pricing) Shipping(subtotal decimal.Decimal, empty bool) decimal.Decimal {
	if empty || subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatShippingFee
}

// Quote prices lines. Tax is always zero.
func (p Pricing) Quote(lines []models.CartLine) models.Totals {
	subtotal := cart.TotalPrice(lines)
	shipping := p.Shipping(subtotal, len(lines) == 0)
	tax := decimal.Zero
	return models.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// gatewayAmount is what the customer is charged online: subtotal plus shipping.
func gatewayAmount(t models.Totals) decimal.Decimal {
	return t.Subtotal.Add(t.Shipping)
}
