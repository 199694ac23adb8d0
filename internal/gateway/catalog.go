package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ikkim/shopfront/internal/app/model"
)

func (c *Client) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), nil, nil)
	if err != nil {
		return nil, err
	}

	var w wireProduct
	if err := c.decode(body, &w, "product"); err != nil {
		return nil, err
	}
	return toProduct(&w), nil
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]model.Product, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.SellerID != "" {
		query.Set("seller", q.SellerID)
	}

	body, err := c.do(ctx, http.MethodGet, "/products", query, nil)
	if err != nil {
		return nil, err
	}

	var ws []wireProduct
	if err := c.decode(body, &ws, "products"); err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(ws))
	for i := range ws {
		products = append(products, *toProduct(&ws[i]))
	}
	return products, nil
}
