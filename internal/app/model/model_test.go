package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from   OrderStatus
		want   OrderStatus
		wantOK bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, "", false},
		{OrderStatusCancelled, "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, ok := NextStatus(tt.from)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(OrderStatusPending))
	assert.True(t, CanCancel(OrderStatusProcessing))
	assert.False(t, CanCancel(OrderStatusShipped))
	assert.False(t, CanCancel(OrderStatusDelivered))
	assert.False(t, CanCancel(OrderStatusCancelled))
}

func TestCart_CloneIsIndependent(t *testing.T) {
	product := &Product{ID: "p1", Price: 10, SellerID: "s1"}
	cart := &Cart{
		ID: "c1",
		CartItems: []CartLineItem{
			{ID: "i1", SizeStock: SizeStock{ID: "ss1", ProductID: "p1", Size: "M", Quantity: 5, Product: product}, Quantity: 2, TotalPrice: 20},
		},
		TotalCartValue: 20,
	}

	cp := cart.Clone()
	cp.CartItems[0].Quantity = 4
	cp.CartItems = append(cp.CartItems, CartLineItem{ID: "i2"})
	cp.TotalCartValue = 99

	assert.Equal(t, 2, cart.CartItems[0].Quantity)
	assert.Len(t, cart.CartItems, 1)
	assert.Equal(t, 20.0, cart.TotalCartValue)
	assert.Nil(t, (*Cart)(nil).Clone())
}

func TestCart_Lookups(t *testing.T) {
	cart := &Cart{CartItems: []CartLineItem{
		{ID: "i1", SizeStock: SizeStock{ProductID: "p1", Size: "M"}, TotalPrice: 12.5},
		{ID: "temp-x", SizeStock: SizeStock{Size: "L", Product: &Product{ID: "p2", Seller: &Seller{ID: "s2"}}}, TotalPrice: 7.5},
	}}

	assert.Equal(t, 1, cart.FindItem("temp-x"))
	assert.Equal(t, -1, cart.FindItem("nope"))
	assert.Equal(t, 0, cart.FindSelection("p1", "M"))
	assert.Equal(t, 1, cart.FindSelection("p2", "L"))
	assert.Equal(t, -1, cart.FindSelection("p1", "L"))
	assert.True(t, cart.CartItems[1].IsTemporary())
	assert.Equal(t, "s2", cart.CartItems[1].SellerID())
	assert.Equal(t, "", cart.CartItems[0].SellerID())

	cart.RecomputeTotal()
	assert.Equal(t, 20.0, cart.TotalCartValue)
}

func TestCartLineItem_UnitPrice(t *testing.T) {
	withProduct := CartLineItem{SizeStock: SizeStock{Product: &Product{Price: 15}}, Quantity: 2, TotalPrice: 30}
	withoutProduct := CartLineItem{Quantity: 4, TotalPrice: 50}

	assert.Equal(t, 15.0, withProduct.UnitPrice())
	assert.Equal(t, 12.5, withoutProduct.UnitPrice())
}

func TestPaymentMethod_Valid(t *testing.T) {
	assert.True(t, PaymentCOD.Valid())
	assert.True(t, PaymentVietQR.Valid())
	assert.False(t, PaymentMethod("CARD").Valid())
}

func TestProduct_StockFor(t *testing.T) {
	p := &Product{SizeStocks: []SizeStock{{ID: "a", Size: "S", Quantity: 1}, {ID: "b", Size: "M", Quantity: 0}}}

	ss, ok := p.StockFor("M")
	assert.True(t, ok)
	assert.Equal(t, "b", ss.ID)
	_, ok = p.StockFor("XL")
	assert.False(t, ok)
}
