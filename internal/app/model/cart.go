package model

import (
	"strings"

	"github.com/ikkim/shopfront/pkg/money"
)

// TempIDPrefix marks ids synthesized locally for optimistic updates.
const TempIDPrefix = "temp-"

type CartLineItem struct {
	ID         string    `json:"id"`
	CartID     string    `json:"cart_id"`
	SizeStock  SizeStock `json:"size_stock"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
}

// UnitPrice prefers the product price and falls back to the snapshot total.
func (i *CartLineItem) UnitPrice() float64 {
	if i.SizeStock.Product != nil {
		return i.SizeStock.Product.Price
	}
	return money.UnitPrice(i.TotalPrice, i.Quantity)
}

func (i *CartLineItem) ProductID() string {
	if i.SizeStock.ProductID != "" {
		return i.SizeStock.ProductID
	}
	if i.SizeStock.Product != nil {
		return i.SizeStock.Product.ID
	}
	return ""
}

func (i *CartLineItem) SellerID() string {
	return i.SizeStock.Product.OwnerID()
}

func (i *CartLineItem) IsTemporary() bool {
	return strings.HasPrefix(i.ID, TempIDPrefix)
}

type Cart struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	CartItems      []CartLineItem `json:"cart_items"`
	TotalCartValue float64        `json:"total_cart_value"`
}

// Clone deep-copies the cart. Product records are shared; they are read-only.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	if c.CartItems != nil {
		cp.CartItems = make([]CartLineItem, len(c.CartItems))
		copy(cp.CartItems, c.CartItems)
	}
	return &cp
}

// FindItem returns the index of the line item with id, or -1.
func (c *Cart) FindItem(id string) int {
	if c == nil {
		return -1
	}
	for i := range c.CartItems {
		if c.CartItems[i].ID == id {
			return i
		}
	}
	return -1
}

// FindSelection returns the index of the line for (productID, size), or -1.
func (c *Cart) FindSelection(productID, size string) int {
	if c == nil {
		return -1
	}
	for i := range c.CartItems {
		item := &c.CartItems[i]
		if item.ProductID() == productID && item.SizeStock.Size == size {
			return i
		}
	}
	return -1
}

// RecomputeTotal sets TotalCartValue from the line totals.
func (c *Cart) RecomputeTotal() {
	totals := make([]float64, len(c.CartItems))
	for i := range c.CartItems {
		totals[i] = c.CartItems[i].TotalPrice
	}
	c.TotalCartValue = money.Sum(totals...)
}

// SellerPartition is derived from a Cart and never mutated directly.
type SellerPartition struct {
	SellerID   string         `json:"seller_id"`
	SellerName string         `json:"seller_name"`
	Items      []CartLineItem `json:"items"`
	Subtotal   float64        `json:"subtotal"`
}
