package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := c.do(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Product](data, "products")
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	data, err := c.do(ctx, http.MethodPost, c.baseURL+"/products", p)
	if err != nil {
		return domain.Product{}, err
	}
	return decodeOne[domain.Product](data, "product")
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p domain.Product) (domain.Product, error) {
	data, err := c.do(ctx, http.MethodPut, c.baseURL+"/products/"+url.PathEscape(id), p)
	if err != nil {
		return domain.Product{}, err
	}
	return decodeOne[domain.Product](data, "product")
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	data, err := c.do(ctx, http.MethodDelete, c.baseURL+"/products/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkEmpty(data)
}
