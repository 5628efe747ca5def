package models

import "github.com/shopspring/decimal"

// Product is the catalog snapshot a caller supplies when adding to the cart.
type Product struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Image                string           `json:"image"`
	Price                decimal.Decimal  `json:"price"`
	DiscountPrice        *decimal.Decimal `json:"discount_price,omitempty"`
	PrescriptionRequired bool             `json:"prescription_required"`
}

// CartItem is one line of the cart. Quantity and StripQuantity are
// independent positive multipliers.
type CartItem struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Image                string           `json:"image"`
	Price                decimal.Decimal  `json:"price"`
	DiscountPrice        *decimal.Decimal `json:"discount_price,omitempty"`
	Quantity             int              `json:"quantity"`
	StripQuantity        int              `json:"strip_quantity"`
	PrescriptionRequired bool             `json:"prescription_required"`
}

// EffectivePrice is the promotional unit price when present, else the list price.
func (i CartItem) EffectivePrice() decimal.Decimal {
	if i.DiscountPrice != nil {
		return *i.DiscountPrice
	}
	return i.Price
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewCartItem builds a line item from a product snapshot.
func NewCartItem(p Product, quantity, stripQuantity int) CartItem {
	return CartItem{
		ID:                   p.ID,
		Name:                 p.Name,
		Image:                p.Image,
		Price:                p.Price,
		DiscountPrice:        p.DiscountPrice,
		Quantity:             quantity,
		StripQuantity:        stripQuantity,
		PrescriptionRequired: p.PrescriptionRequired,
	}
}

// Subtotal sums the effective line totals.
func Subtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// RequiresPrescription reports whether any line needs a prescription upload.
func RequiresPrescription(items []CartItem) bool {
	for _, it := range items {
		if it.PrescriptionRequired {
			return true
		}
	}
	return false
}
