package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	data, err := c.do(ctx, http.MethodGet, c.baseURL+"/orders", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Order](data, "orders")
}

// CreateOrder posts a new order. The returned order carries the id the
// backend assigned, when it sent one.
func (c *Client) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	data, err := c.do(ctx, http.MethodPost, c.baseURL+"/orders/create", o)
	if err != nil {
		return domain.Order{}, err
	}
	return decodeOne[domain.Order](data, "order")
}

func (c *Client) UpdateOrder(ctx context.Context, id string, o domain.Order) (domain.Order, error) {
	data, err := c.do(ctx, http.MethodPut, c.baseURL+"/orders/update/"+url.PathEscape(id), o)
	if err != nil {
		return domain.Order{}, err
	}
	return decodeOne[domain.Order](data, "order")
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	body := map[string]domain.OrderStatus{"status": status}
	data, err := c.do(ctx, http.MethodPut, c.baseURL+"/orders/update/"+url.PathEscape(id), body)
	if err != nil {
		return domain.Order{}, err
	}
	return decodeOne[domain.Order](data, "order")
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	data, err := c.do(ctx, http.MethodDelete, c.baseURL+"/orders/delete/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkEmpty(data)
}
