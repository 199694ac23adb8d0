package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/ikkim/shopfront/internal/app/model"
)

func userQuery(userID string) url.Values {
	return url.Values{"userId": []string{userID}}
}

func (c *Client) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	body, err := c.do(ctx, http.MethodGet, "/cart/"+url.PathEscape(userID), nil, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var w wireCart
	if err := c.decode(body, &w, "cart"); err != nil {
		return nil, err
	}
	// {"cart": null} and an empty object both mean no cart
	if w.identity() == "" && len(w.CartItems) == 0 {
		return nil, nil
	}
	cart := toCart(&w)
	if cart.UserID == "" {
		cart.UserID = userID
	}
	return cart, nil
}

func (c *Client) AddItem(ctx context.Context, userID string, req AddItemRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/cart/"+url.PathEscape(userID), nil, req)
	return err
}

func (c *Client) UpdateItem(ctx context.Context, userID, itemID string, quantity int) error {
	_, err := c.do(ctx, http.MethodPatch, "/cart/item/"+url.PathEscape(itemID), userQuery(userID), wireQuantity{Quantity: quantity})
	return err
}

func (c *Client) RemoveItem(ctx context.Context, userID, itemID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart/item/"+url.PathEscape(itemID), userQuery(userID), nil)
	return err
}

func (c *Client) RemoveSellerItems(ctx context.Context, userID, sellerID string) (*SellerRemoval, error) {
	body, err := c.do(ctx, http.MethodDelete, "/cart/seller/"+url.PathEscape(sellerID), userQuery(userID), nil)
	if err != nil {
		return nil, err
	}

	var w wireSellerRemoval
	if err := c.decode(body, &w, "result"); err != nil {
		return nil, err
	}
	return &SellerRemoval{DeletedCount: w.DeletedCount, PriceReduction: w.PriceReduction}, nil
}
