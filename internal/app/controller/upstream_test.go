package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/internal/middleware"
	"github.com/ikkim/shopfront/pkg/money"
	"github.com/stretchr/testify/require"
)

// memoryUpstream stands in for the commerce API behind every gateway.
type memoryUpstream struct {
	mu          sync.Mutex
	products    map[string]*model.Product
	cart        *model.Cart
	orders      []*model.Order
	addresses   []*model.DeliveryAddress
	failSellers map[string]bool
	down        bool
	nextID      int
}

func newMemoryUpstream(products ...*model.Product) *memoryUpstream {
	u := &memoryUpstream{
		products:    make(map[string]*model.Product),
		failSellers: make(map[string]bool),
	}
	for _, p := range products {
		u.products[p.ID] = p
	}
	return u
}

func (u *memoryUpstream) id(prefix string) string {
	u.nextID++
	return fmt.Sprintf("%s-%d", prefix, u.nextID)
}

func (u *memoryUpstream) setDown(down bool) {
	u.mu.Lock()
	u.down = down
	u.mu.Unlock()
}

func (u *memoryUpstream) check() error {
	if u.down {
		return fmt.Errorf("%w: connection refused", gateway.ErrUpstream)
	}
	return nil
}

func (u *memoryUpstream) seedCart(userID, productID, size string, quantity int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.addLocked(userID, productID, size, quantity)
}

func (u *memoryUpstream) seedOrder(o model.Order) *model.Order {
	u.mu.Lock()
	defer u.mu.Unlock()
	order := o
	u.orders = append(u.orders, &order)
	return &order
}

func (u *memoryUpstream) seedAddress(a model.DeliveryAddress) {
	u.mu.Lock()
	defer u.mu.Unlock()
	addr := a
	u.addresses = append(u.addresses, &addr)
}

func (u *memoryUpstream) addLocked(userID, productID, size string, quantity int) {
	if u.cart == nil {
		u.cart = &model.Cart{ID: "cart-1", UserID: userID, CartItems: []model.CartLineItem{}}
	}
	if idx := u.cart.FindSelection(productID, size); idx >= 0 {
		item := &u.cart.CartItems[idx]
		item.Quantity += quantity
		item.TotalPrice = money.LineTotal(item.UnitPrice(), item.Quantity)
		u.cart.RecomputeTotal()
		return
	}
	p := u.products[productID]
	stock, _ := p.StockFor(size)
	u.cart.CartItems = append(u.cart.CartItems, model.CartLineItem{
		ID:     u.id("item"),
		CartID: u.cart.ID,
		SizeStock: model.SizeStock{
			ID:        stock.ID,
			ProductID: p.ID,
			Size:      size,
			Quantity:  stock.Quantity,
			Product:   p,
		},
		Quantity:   quantity,
		TotalPrice: money.LineTotal(p.Price, quantity),
	})
	u.cart.RecomputeTotal()
}

func (u *memoryUpstream) GetCart(context.Context, string) (*model.Cart, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	return u.cart.Clone(), nil
}

func (u *memoryUpstream) AddItem(_ context.Context, userID string, req gateway.AddItemRequest) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return err
	}
	u.addLocked(userID, req.ProductID, req.Size, req.Quantity)
	return nil
}

func (u *memoryUpstream) UpdateItem(_ context.Context, _, itemID string, quantity int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return err
	}
	idx := u.cart.FindItem(itemID)
	if idx < 0 {
		return gateway.ErrNotFound
	}
	item := &u.cart.CartItems[idx]
	item.Quantity = quantity
	item.TotalPrice = money.LineTotal(item.UnitPrice(), quantity)
	u.cart.RecomputeTotal()
	return nil
}

func (u *memoryUpstream) RemoveItem(_ context.Context, _, itemID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return err
	}
	idx := u.cart.FindItem(itemID)
	if idx < 0 {
		return gateway.ErrNotFound
	}
	u.cart.CartItems = append(u.cart.CartItems[:idx], u.cart.CartItems[idx+1:]...)
	u.cart.RecomputeTotal()
	return nil
}

func (u *memoryUpstream) RemoveSellerItems(_ context.Context, _, sellerID string) (*gateway.SellerRemoval, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	removal := &gateway.SellerRemoval{}
	kept := u.cart.CartItems[:0]
	for _, item := range u.cart.CartItems {
		if item.SellerID() == sellerID {
			removal.DeletedCount++
			removal.PriceReduction = money.Sum(removal.PriceReduction, item.TotalPrice)
			continue
		}
		kept = append(kept, item)
	}
	u.cart.CartItems = kept
	u.cart.RecomputeTotal()
	return removal, nil
}

func (u *memoryUpstream) CreateOrder(_ context.Context, req gateway.CreateOrderRequest) (*model.Order, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	if u.failSellers[req.SellerID] {
		return nil, fmt.Errorf("%w: status 500", gateway.ErrUpstream)
	}
	order := &model.Order{
		ID:            u.id("order"),
		UserID:        req.UserID,
		SellerID:      req.SellerID,
		Phone:         req.Phone,
		Address:       req.Address,
		PostalCode:    req.PostalCode,
		PaymentMethod: req.PaymentMethod,
		Items:         req.Items,
		TotalPrice:    req.TotalPrice,
		Status:        model.OrderStatusPending,
		CheckoutAt:    req.CheckoutAt,
		CreatedAt:     time.Now(),
	}
	u.orders = append(u.orders, order)
	cp := *order
	return &cp, nil
}

func (u *memoryUpstream) listOrders(match func(*model.Order) bool) ([]model.Order, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	out := []model.Order{}
	for _, o := range u.orders {
		if match(o) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (u *memoryUpstream) ListUserOrders(_ context.Context, userID string) ([]model.Order, error) {
	return u.listOrders(func(o *model.Order) bool { return o.UserID == userID })
}

func (u *memoryUpstream) ListSellerOrders(_ context.Context, sellerID string) ([]model.Order, error) {
	return u.listOrders(func(o *model.Order) bool { return o.SellerID == sellerID })
}

func (u *memoryUpstream) findOrder(orderID string) (*model.Order, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	for _, o := range u.orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return nil, gateway.ErrNotFound
}

func (u *memoryUpstream) GetOrder(_ context.Context, orderID string) (*model.Order, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	o, err := u.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	cp := *o
	return &cp, nil
}

func (u *memoryUpstream) UpdateStatus(_ context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	o, err := u.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	o.Status = status
	cp := *o
	return &cp, nil
}

func (u *memoryUpstream) Cancel(ctx context.Context, orderID string) (*model.Order, error) {
	return u.UpdateStatus(ctx, orderID, model.OrderStatusCancelled)
}

func (u *memoryUpstream) ListAddresses(_ context.Context, userID string) ([]model.DeliveryAddress, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	out := []model.DeliveryAddress{}
	for _, a := range u.addresses {
		if a.OwnerUserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (u *memoryUpstream) CreateAddress(_ context.Context, addr *model.DeliveryAddress) (*model.DeliveryAddress, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	created := *addr
	created.ID = u.id("addr")
	u.addresses = append(u.addresses, &created)
	cp := created
	return &cp, nil
}

func (u *memoryUpstream) UpdateAddress(_ context.Context, addr *model.DeliveryAddress) (*model.DeliveryAddress, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	for i, a := range u.addresses {
		if a.ID == addr.ID {
			updated := *addr
			u.addresses[i] = &updated
			cp := updated
			return &cp, nil
		}
	}
	return nil, gateway.ErrNotFound
}

func (u *memoryUpstream) DeleteAddress(_ context.Context, addressID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return err
	}
	for i, a := range u.addresses {
		if a.ID == addressID {
			u.addresses = append(u.addresses[:i], u.addresses[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

func (u *memoryUpstream) GetProduct(_ context.Context, productID string) (*model.Product, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	p, ok := u.products[productID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (u *memoryUpstream) ListProducts(_ context.Context, q gateway.ProductQuery) ([]model.Product, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	out := []model.Product{}
	for _, id := range []string{"p-ring", "p-shirt", "p-cap"} {
		p, ok := u.products[id]
		if !ok {
			continue
		}
		if q.SellerID != "" && p.OwnerID() != q.SellerID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func ringProduct() *model.Product {
	return &model.Product{
		ID: "p-ring", Name: "Silver Ring", Price: 20, SellerID: "seller-a", SellerName: "Shop A",
		SizeStocks: []model.SizeStock{{ID: "ss-ring-7", ProductID: "p-ring", Size: "7", Quantity: 5}},
	}
}

func shirtProduct() *model.Product {
	return &model.Product{
		ID: "p-shirt", Name: "Linen Shirt", Price: 15, Seller: &model.Seller{ID: "seller-b", ShopName: "Shop B"},
		SizeStocks: []model.SizeStock{{ID: "ss-shirt-m", ProductID: "p-shirt", Size: "M", Quantity: 10}},
	}
}

// asUser stands in for the auth middleware.
func asUser(userID, role, sellerID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.UserRoleKey, role)
		c.Set(middleware.SellerIDKey, sellerID)
		c.Set(middleware.TokenKey, "token-"+userID)
		c.Next()
	}
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(handlers...)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, w, &body)
	return body.Error
}
