package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/events"
	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/pkg/money"
	"github.com/stretchr/testify/mock"
)

// fakeCartBackend is an in-memory upstream cart. It owns the authoritative
// cart and answers every CartGateway call the way the real API does.
type fakeCartBackend struct {
	mu       sync.Mutex
	cart     *model.Cart
	products map[string]*model.Product
	calls    map[string]int
	failOn   map[string]error
	nextID   int
}

func newFakeCartBackend(products ...*model.Product) *fakeCartBackend {
	b := &fakeCartBackend{
		products: make(map[string]*model.Product),
		calls:    make(map[string]int),
		failOn:   make(map[string]error),
	}
	for _, p := range products {
		b.products[p.ID] = p
	}
	return b
}

func (b *fakeCartBackend) record(op string) error {
	b.calls[op]++
	return b.failOn[op]
}

func (b *fakeCartBackend) fail(op string, err error) {
	b.mu.Lock()
	b.failOn[op] = err
	b.mu.Unlock()
}

func (b *fakeCartBackend) callCount(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *fakeCartBackend) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

// seed puts a line straight into the server cart.
func (b *fakeCartBackend) seed(productID, size string, quantity int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addLocked("u1", productID, size, quantity)
}

func (b *fakeCartBackend) addLocked(userID, productID, size string, quantity int) {
	if b.cart == nil {
		b.cart = &model.Cart{ID: "cart-1", UserID: userID, CartItems: []model.CartLineItem{}}
	}
	if idx := b.cart.FindSelection(productID, size); idx >= 0 {
		item := &b.cart.CartItems[idx]
		item.Quantity += quantity
		item.TotalPrice = money.LineTotal(item.UnitPrice(), item.Quantity)
		b.cart.RecomputeTotal()
		return
	}

	p := b.products[productID]
	stock, _ := p.StockFor(size)
	b.nextID++
	b.cart.CartItems = append(b.cart.CartItems, model.CartLineItem{
		ID:     fmt.Sprintf("item-%d", b.nextID),
		CartID: b.cart.ID,
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
	b.cart.RecomputeTotal()
}

func (b *fakeCartBackend) GetCart(_ context.Context, _ string) (*model.Cart, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("GetCart"); err != nil {
		return nil, err
	}
	return b.cart.Clone(), nil
}

func (b *fakeCartBackend) AddItem(_ context.Context, userID string, req gateway.AddItemRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("AddItem"); err != nil {
		return err
	}
	b.addLocked(userID, req.ProductID, req.Size, req.Quantity)
	return nil
}

func (b *fakeCartBackend) UpdateItem(_ context.Context, _ string, itemID string, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("UpdateItem"); err != nil {
		return err
	}
	idx := b.cart.FindItem(itemID)
	if idx < 0 {
		return gateway.ErrNotFound
	}
	item := &b.cart.CartItems[idx]
	item.Quantity = quantity
	item.TotalPrice = money.LineTotal(item.UnitPrice(), quantity)
	b.cart.RecomputeTotal()
	return nil
}

func (b *fakeCartBackend) RemoveItem(_ context.Context, _ string, itemID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("RemoveItem"); err != nil {
		return err
	}
	idx := b.cart.FindItem(itemID)
	if idx < 0 {
		return gateway.ErrNotFound
	}
	b.cart.CartItems = append(b.cart.CartItems[:idx], b.cart.CartItems[idx+1:]...)
	b.cart.RecomputeTotal()
	return nil
}

func (b *fakeCartBackend) RemoveSellerItems(_ context.Context, _ string, sellerID string) (*gateway.SellerRemoval, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("RemoveSellerItems"); err != nil {
		return nil, err
	}
	removal := &gateway.SellerRemoval{}
	kept := b.cart.CartItems[:0]
	for _, item := range b.cart.CartItems {
		if item.SellerID() == sellerID {
			removal.DeletedCount++
			removal.PriceReduction = money.Sum(removal.PriceReduction, item.TotalPrice)
			continue
		}
		kept = append(kept, item)
	}
	b.cart.CartItems = kept
	b.cart.RecomputeTotal()
	return removal, nil
}

type stubSession struct {
	userID string
	token  string
	ok     bool
}

func (s stubSession) Credentials() (string, string, bool) {
	return s.userID, s.token, s.ok
}

type stubProducts map[string]*model.Product

func (s stubProducts) Lookup(_ context.Context, id string) (*model.Product, bool) {
	p, ok := s[id]
	return p, ok
}

type mockOrderGateway struct {
	mock.Mock
}

func (m *mockOrderGateway) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *mockOrderGateway) ListUserOrders(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *mockOrderGateway) ListSellerOrders(ctx context.Context, sellerID string) ([]model.Order, error) {
	args := m.Called(ctx, sellerID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *mockOrderGateway) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	args := m.Called(ctx, orderID)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *mockOrderGateway) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, orderID, status)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *mockOrderGateway) Cancel(ctx context.Context, orderID string) (*model.Order, error) {
	args := m.Called(ctx, orderID)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

type mockAddressGateway struct {
	mock.Mock
}

func (m *mockAddressGateway) ListAddresses(ctx context.Context, userID string) ([]model.DeliveryAddress, error) {
	args := m.Called(ctx, userID)
	addrs, _ := args.Get(0).([]model.DeliveryAddress)
	return addrs, args.Error(1)
}

func (m *mockAddressGateway) CreateAddress(ctx context.Context, addr *model.DeliveryAddress) (*model.DeliveryAddress, error) {
	args := m.Called(ctx, addr)
	out, _ := args.Get(0).(*model.DeliveryAddress)
	return out, args.Error(1)
}

func (m *mockAddressGateway) UpdateAddress(ctx context.Context, addr *model.DeliveryAddress) (*model.DeliveryAddress, error) {
	args := m.Called(ctx, addr)
	out, _ := args.Get(0).(*model.DeliveryAddress)
	return out, args.Error(1)
}

func (m *mockAddressGateway) DeleteAddress(ctx context.Context, addressID string) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

type mockCatalogGateway struct {
	mock.Mock
}

func (m *mockCatalogGateway) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockCatalogGateway) ListProducts(ctx context.Context, q gateway.ProductQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

type capturePublisher struct {
	mu     sync.Mutex
	key    string
	events []events.Envelope
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, key string, evs ...events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.key = key
	p.events = append(p.events, evs...)
	return p.err
}

func (p *capturePublisher) Close() error { return nil }

// Fixtures: seller A names itself on the product, seller B only has a manager name.

func productA() *model.Product {
	return &model.Product{
		ID:         "prod-a",
		Name:       "Linen Shirt",
		Price:      20,
		SellerID:   "seller-a",
		SellerName: "Shop A",
		SizeStocks: []model.SizeStock{{ID: "ss-a-m", ProductID: "prod-a", Size: "M", Quantity: 10}},
	}
}

func productB1() *model.Product {
	return &model.Product{
		ID:         "prod-b1",
		Name:       "Canvas Cap",
		Price:      15,
		Seller:     &model.Seller{ID: "seller-b", ManagerName: "Bob"},
		SizeStocks: []model.SizeStock{{ID: "ss-b1-m", ProductID: "prod-b1", Size: "M", Quantity: 10}},
	}
}

func productB2() *model.Product {
	return &model.Product{
		ID:         "prod-b2",
		Name:       "Tote Bag",
		Price:      25,
		Seller:     &model.Seller{ID: "seller-b", ManagerName: "Bob"},
		SizeStocks: []model.SizeStock{{ID: "ss-b2-l", ProductID: "prod-b2", Size: "L", Quantity: 5}},
	}
}

var fixedNow = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)
