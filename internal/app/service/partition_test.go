package service

import (
	"testing"

	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id string, p *model.Product, size string, qty int, total float64) model.CartLineItem {
	return model.CartLineItem{
		ID:         id,
		SizeStock:  model.SizeStock{ProductID: p.ID, Size: size, Product: p},
		Quantity:   qty,
		TotalPrice: total,
	}
}

func TestPartitionBySeller(t *testing.T) {
	a, b1, b2 := productA(), productB1(), productB2()
	orphan := &model.Product{ID: "prod-x", Price: 5, SellerID: "seller-x"}

	cart := &model.Cart{
		ID: "cart-1",
		CartItems: []model.CartLineItem{
			line("i1", b1, "M", 1, 15),
			line("i2", a, "M", 1, 20),
			line("i3", b2, "L", 1, 25),
			line("i4", orphan, "", 2, 10),
		},
	}

	t.Run("Groups in first-seen order", func(t *testing.T) {
		parts := PartitionBySeller(cart)
		require.Len(t, parts, 3)
		assert.Equal(t, "seller-b", parts[0].SellerID)
		assert.Equal(t, "seller-a", parts[1].SellerID)
		assert.Equal(t, "seller-x", parts[2].SellerID)
	})

	t.Run("Every line appears exactly once", func(t *testing.T) {
		parts := PartitionBySeller(cart)
		seen := map[string]int{}
		for _, p := range parts {
			for _, item := range p.Items {
				seen[item.ID]++
				assert.Equal(t, p.SellerID, item.SellerID())
			}
		}
		assert.Equal(t, map[string]int{"i1": 1, "i2": 1, "i3": 1, "i4": 1}, seen)
	})

	t.Run("Subtotals sum line totals", func(t *testing.T) {
		parts := PartitionBySeller(cart)
		assert.Equal(t, 40.0, parts[0].Subtotal)
		assert.Equal(t, 20.0, parts[1].Subtotal)
		assert.Equal(t, 10.0, parts[2].Subtotal)
	})

	t.Run("Seller name falls back to manager then placeholder", func(t *testing.T) {
		parts := PartitionBySeller(cart)
		assert.Equal(t, "Bob", parts[0].SellerName)
		assert.Equal(t, "Shop A", parts[1].SellerName)
		assert.Equal(t, UnknownSellerName, parts[2].SellerName)
	})

	t.Run("Does not modify the cart", func(t *testing.T) {
		before := cart.Clone()
		PartitionBySeller(cart)
		assert.Equal(t, before, cart)
	})

	t.Run("Decimal subtotal avoids float drift", func(t *testing.T) {
		c := &model.Cart{CartItems: []model.CartLineItem{
			line("d1", a, "M", 1, 0.1),
			line("d2", a, "M", 1, 0.2),
		}}
		parts := PartitionBySeller(c)
		require.Len(t, parts, 1)
		assert.Equal(t, 0.3, parts[0].Subtotal)
	})
}

func TestPartitionBySeller_Empty(t *testing.T) {
	assert.Empty(t, PartitionBySeller(nil))
	assert.NotNil(t, PartitionBySeller(nil))
	assert.Empty(t, PartitionBySeller(&model.Cart{ID: "c"}))
}
