package service

import (
	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/shopspring/decimal"
)

const UnknownSellerName = "Unknown Seller"

// PartitionBySeller groups cart lines by seller in first-seen order.
// It is pure: the cart is not modified and nothing is fetched.
func PartitionBySeller(cart *model.Cart) []model.SellerPartition {
	if cart == nil || len(cart.CartItems) == 0 {
		return []model.SellerPartition{}
	}

	index := make(map[string]int)
	partitions := make([]model.SellerPartition, 0)
	subtotals := make([]decimal.Decimal, 0)

	for _, item := range cart.CartItems {
		sellerID := item.SellerID()
		i, ok := index[sellerID]
		if !ok {
			i = len(partitions)
			index[sellerID] = i
			partitions = append(partitions, model.SellerPartition{
				SellerID:   sellerID,
				SellerName: sellerName(item.SizeStock.Product),
				Items:      make([]model.CartLineItem, 0, 1),
			})
			subtotals = append(subtotals, decimal.Zero)
		}
		partitions[i].Items = append(partitions[i].Items, item)
		subtotals[i] = subtotals[i].Add(decimal.NewFromFloat(item.TotalPrice))
	}

	for i := range partitions {
		partitions[i].Subtotal = subtotals[i].InexactFloat64()
	}
	return partitions
}

func sellerName(p *model.Product) string {
	if p != nil {
		if p.SellerName != "" {
			return p.SellerName
		}
		if p.Seller != nil && p.Seller.ManagerName != "" {
			return p.Seller.ManagerName
		}
	}
	return UnknownSellerName
}
