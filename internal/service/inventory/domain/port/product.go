package port

import "context"

// ProductDetails is the read-only metadata fetched from the product service.
type ProductDetails struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// ProductClient enriches inventory reads with product metadata. A nil result
// or an error is non-fatal; callers degrade gracefully.
type ProductClient interface {
	GetProductByID(ctx context.Context, productID string) (*ProductDetails, error)
}
