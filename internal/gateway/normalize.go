package gateway

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/pkg/money"
	"github.com/ikkim/shopfront/pkg/util"
)

// unwrap peels the envelopes the upstream wraps payloads in:
// {"data": ...}, {"<key>": ...} for any of keys, or the bare value.
func unwrap(body []byte, keys ...string) json.RawMessage {
	raw := json.RawMessage(bytes.TrimSpace(body))
	for depth := 0; depth < 3; depth++ {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return raw
		}
		next, ok := obj["data"]
		if !ok || !isContainer(next) {
			ok = false
			for _, k := range keys {
				if inner, found := obj[k]; found && isContainer(inner) {
					next, ok = inner, true
					break
				}
			}
		}
		if !ok {
			return raw
		}
		raw = json.RawMessage(bytes.TrimSpace(next))
	}
	return raw
}

func isContainer(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && (raw[0] == '{' || raw[0] == '[')
}

func toSeller(w *wireSeller) *model.Seller {
	if w == nil {
		return nil
	}
	return &model.Seller{
		ID:          w.identity(),
		ShopName:    w.ShopName,
		ManagerName: w.ManagerName,
	}
}

func toProduct(w *wireProduct) *model.Product {
	if w == nil {
		return nil
	}
	p := &model.Product{
		ID:         w.identity(),
		Name:       w.Name,
		Price:      w.Price,
		ImageURL:   w.ImageURL,
		SellerID:   w.SellerID,
		SellerName: w.SellerName,
		Seller:     toSeller(w.Seller.Seller),
	}
	if p.ImageURL == "" && len(w.Images) > 0 {
		p.ImageURL = w.Images[0]
	}
	if p.SellerID == "" {
		p.SellerID = w.Seller.ID
	}
	for i := range w.SizeStocks {
		ss := toSizeStock(&w.SizeStocks[i])
		// nested stocks never point back at their product
		ss.Product = nil
		ss.ProductID = p.ID
		p.SizeStocks = append(p.SizeStocks, ss)
	}
	return p
}

func toSizeStock(w *wireSizeStock) model.SizeStock {
	ss := model.SizeStock{
		ID:        w.identity(),
		ProductID: w.ProductID,
		Size:      w.Size,
		Quantity:  w.Quantity,
		Product:   toProduct(w.Product.Product),
	}
	if ss.ProductID == "" {
		ss.ProductID = w.Product.ID
	}
	return ss
}

func toCart(w *wireCart) *model.Cart {
	cart := &model.Cart{
		ID:             w.identity(),
		UserID:         w.UserID,
		CartItems:      make([]model.CartLineItem, 0, len(w.CartItems)),
		TotalCartValue: w.TotalCartValue,
	}
	if cart.UserID == "" {
		cart.UserID = w.User.ID
	}

	for i := range w.CartItems {
		wi := &w.CartItems[i]
		item := model.CartLineItem{
			ID:         wi.identity(),
			CartID:     wi.Cart.ID,
			Quantity:   wi.Quantity,
			TotalPrice: wi.TotalPrice,
		}
		if item.CartID == "" {
			item.CartID = cart.ID
		}
		if wi.SizeStock.SizeStock != nil {
			item.SizeStock = toSizeStock(wi.SizeStock.SizeStock)
		} else {
			item.SizeStock.ID = wi.SizeStock.ID
		}
		if item.TotalPrice == 0 && item.SizeStock.Product != nil {
			item.TotalPrice = money.LineTotal(item.SizeStock.Product.Price, item.Quantity)
		}
		cart.CartItems = append(cart.CartItems, item)
	}

	if cart.TotalCartValue == 0 && len(cart.CartItems) > 0 {
		cart.RecomputeTotal()
	}
	return cart
}

func toAddress(w *wireAddress) *model.DeliveryAddress {
	a := &model.DeliveryAddress{
		ID:            w.identity(),
		OwnerUserID:   w.User.ID,
		OwnerSellerID: w.Seller.ID,
		Street:        strings.TrimSpace(w.Street),
		Ward:          strings.TrimSpace(w.Ward),
		District:      strings.TrimSpace(w.District),
		Province:      strings.TrimSpace(w.Province),
		FullAddress:   strings.TrimSpace(w.FullAddress),
		Phone:         w.PhoneNumber,
		PostalCode:    w.PostalCode,
		Latitude:      w.Latitude,
		Longitude:     w.Longitude,
		IsDefault:     w.IsDefault,
	}
	if a.Phone == "" {
		a.Phone = w.Phone
	}
	if a.FullAddress == "" {
		a.FullAddress = util.JoinAddress(a.Street, a.Ward, a.District, a.Province)
	}
	return a
}

func toOrder(w *wireOrder) *model.Order {
	o := &model.Order{
		ID:            w.identity(),
		UserID:        w.User.ID,
		SellerID:      w.Seller.ID,
		Phone:         w.PhoneNumber,
		Address:       string(w.Address),
		PostalCode:    w.PostalCode,
		PaymentMethod: model.PaymentMethod(strings.ToUpper(w.PaymentMethod)),
		TotalPrice:    w.TotalPrice,
		Status:        model.OrderStatus(strings.ToUpper(w.Status)),
	}
	if o.Phone == "" {
		o.Phone = w.Phone
	}
	if w.CreatedAt != nil {
		o.CreatedAt = *w.CreatedAt
	}
	if w.CheckoutAt != nil {
		o.CheckoutAt = *w.CheckoutAt
	} else {
		o.CheckoutAt = o.CreatedAt
	}

	items := w.OrderItems
	if len(items) == 0 {
		items = w.Items
	}
	o.Items = make([]model.OrderItem, 0, len(items))
	for _, wi := range items {
		id := wi.SizeStockID
		if id == "" {
			id = wi.SizeStock.ID
		}
		o.Items = append(o.Items, model.OrderItem{
			SizeStockID: id,
			Quantity:    wi.Quantity,
			Price:       wi.Price,
		})
	}
	return o
}

func toOrderRequest(req CreateOrderRequest) wireOrderRequest {
	checkoutAt := req.CheckoutAt
	if checkoutAt.IsZero() {
		checkoutAt = time.Now().UTC()
	}
	out := wireOrderRequest{
		User:          req.UserID,
		Seller:        req.SellerID,
		OrderItems:    make([]wireOrderItemRequest, 0, len(req.Items)),
		Address:       req.Address,
		PhoneNumber:   req.Phone,
		PostalCode:    req.PostalCode,
		PaymentMethod: string(req.PaymentMethod),
		TotalPrice:    req.TotalPrice,
		CheckoutAt:    checkoutAt,
	}
	for _, item := range req.Items {
		out.OrderItems = append(out.OrderItems, wireOrderItemRequest{
			SizeStock: item.SizeStockID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return out
}

func toAddressRequest(a *model.DeliveryAddress) wireAddressRequest {
	full := a.FullAddress
	if full == "" {
		full = util.JoinAddress(a.Street, a.Ward, a.District, a.Province)
	}
	return wireAddressRequest{
		User:        a.OwnerUserID,
		Seller:      a.OwnerSellerID,
		Street:      a.Street,
		Ward:        a.Ward,
		District:    a.District,
		Province:    a.Province,
		FullAddress: full,
		PhoneNumber: a.Phone,
		PostalCode:  a.PostalCode,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		IsDefault:   a.IsDefault,
	}
}
