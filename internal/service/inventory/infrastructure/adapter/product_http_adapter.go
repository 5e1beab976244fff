package adapter

import (
	"context"
	"errors"
	"fmt"

	"warehouse/internal/pkg/httpclient"
	"warehouse/internal/service/inventory/domain/port"
)

// ProductHTTPAdapter enriches inventory reads with product metadata from the
// product service.
type ProductHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewProductHTTPAdapter(client *httpclient.Client, baseURL string) *ProductHTTPAdapter {
	return &ProductHTTPAdapter{client: client, baseURL: baseURL}
}

// GetProductByID returns nil without error when the product does not exist:
// a missing product record must not break an inventory read.
func (a *ProductHTTPAdapter) GetProductByID(ctx context.Context, productID string) (*port.ProductDetails, error) {
	var details port.ProductDetails
	url := fmt.Sprintf("%s/api/products/%s", a.baseURL, productID)
	if err := a.client.GetJSON(ctx, url, &details); err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &details, nil
}
