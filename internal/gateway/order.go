package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ikkim/shopfront/internal/app/model"
)

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	body, err := c.do(ctx, http.MethodPost, "/orders", nil, toOrderRequest(req))
	if err != nil {
		return nil, err
	}
	return c.decodeOrder(body)
}

func (c *Client) ListUserOrders(ctx context.Context, userID string) ([]model.Order, error) {
	body, err := c.do(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(userID), nil, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeOrders(body)
}

func (c *Client) ListSellerOrders(ctx context.Context, sellerID string) ([]model.Order, error) {
	body, err := c.do(ctx, http.MethodGet, "/orders/seller/"+url.PathEscape(sellerID), nil, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeOrders(body)
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	body, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeOrder(body)
}

func (c *Client) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	body, err := c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(orderID)+"/status", nil, wireStatus{Status: string(status)})
	if err != nil {
		return nil, err
	}
	return c.decodeOrder(body)
}

func (c *Client) Cancel(ctx context.Context, orderID string) (*model.Order, error) {
	body, err := c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(orderID)+"/cancel", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeOrder(body)
}

func (c *Client) decodeOrder(body []byte) (*model.Order, error) {
	var w wireOrder
	if err := c.decode(body, &w, "order"); err != nil {
		return nil, err
	}
	return toOrder(&w), nil
}

func (c *Client) decodeOrders(body []byte) ([]model.Order, error) {
	var ws []wireOrder
	if err := c.decode(body, &ws, "orders"); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(ws))
	for i := range ws {
		orders = append(orders, *toOrder(&ws[i]))
	}
	return orders, nil
}
