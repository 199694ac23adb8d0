package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/ikkim/shopfront/internal/app/model"
)

func (c *Client) ListAddresses(ctx context.Context, userID string) ([]model.DeliveryAddress, error) {
	body, err := c.do(ctx, http.MethodGet, "/addresses", userQuery(userID), nil)
	if err != nil {
		return nil, err
	}

	var ws []wireAddress
	if err := c.decode(body, &ws, "addresses"); err != nil {
		return nil, err
	}
	addrs := make([]model.DeliveryAddress, 0, len(ws))
	for i := range ws {
		addrs = append(addrs, *toAddress(&ws[i]))
	}
	return addrs, nil
}

func (c *Client) CreateAddress(ctx context.Context, addr *model.DeliveryAddress) (*model.DeliveryAddress, error) {
	body, err := c.do(ctx, http.MethodPost, "/addresses", nil, toAddressRequest(addr))
	if err != nil {
		return nil, err
	}
	return c.decodeAddress(body)
}

func (c *Client) UpdateAddress(ctx context.Context, addr *model.DeliveryAddress) (*model.DeliveryAddress, error) {
	if addr.ID == "" {
		return nil, errors.New("address id is required")
	}
	body, err := c.do(ctx, http.MethodPatch, "/addresses/"+url.PathEscape(addr.ID), nil, toAddressRequest(addr))
	if err != nil {
		return nil, err
	}
	return c.decodeAddress(body)
}

func (c *Client) DeleteAddress(ctx context.Context, addressID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/addresses/"+url.PathEscape(addressID), nil, nil)
	return err
}

func (c *Client) decodeAddress(body []byte) (*model.DeliveryAddress, error) {
	var w wireAddress
	if err := c.decode(body, &w, "address"); err != nil {
		return nil, err
	}
	return toAddress(&w), nil
}
