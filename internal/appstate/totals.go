package appstate

import "github.com/anonto42/socialshop/backend/internal/models"

const (
	// TaxPercent is applied to the subtotal.
	TaxPercent    = 5
	ShippingCents = 1500
)

// Totals is a cart summary in integer cents.
type Totals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	TaxCents      int64 `json:"tax_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TotalCents    int64 `json:"total_cents"`

	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// ComputeTotals sums price*quantity, adds 5% tax (rounded half up to the
// cent) and flat shipping.
func ComputeTotals(items []models.CartItem) Totals {
	var subtotal int64
	for _, it := range items {
		subtotal += it.PriceCents * int64(it.Quantity)
	}
	tax := (subtotal*TaxPercent + 50) / 100
	t := Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		ShippingCents: ShippingCents,
		TotalCents:    subtotal + tax + ShippingCents,
	}
	t.Subtotal = dollars(t.SubtotalCents)
	t.Tax = dollars(t.TaxCents)
	t.Shipping = dollars(t.ShippingCents)
	t.Total = dollars(t.TotalCents)
	return t
}

func dollars(cents int64) float64 {
	return float64(cents) / 100
}
