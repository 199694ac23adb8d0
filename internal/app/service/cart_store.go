package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/pkg/logger"
	"github.com/ikkim/shopfront/pkg/money"
)

// SessionProvider supplies the identity a store acts for.
// ok is false once the session has ended.
type SessionProvider interface {
	Credentials() (userID, token string, ok bool)
}

// ProductLookup resolves products that were already loaded for browsing.
type ProductLookup interface {
	Lookup(ctx context.Context, productID string) (*model.Product, bool)
}

// CartView is an immutable snapshot of a store's state.
type CartView struct {
	Cart       *model.Cart             `json:"cart"`
	Partitions []model.SellerPartition `json:"partitions"`
	IsLoading  bool                    `json:"is_loading"`
	LastError  string                  `json:"last_error,omitempty"`
	ErrorCode  string                  `json:"error_code,omitempty"`
}

// CartStore is the single authoritative copy of one user's cart.
//
// Every mutation applies an optimistic change, confirms it through the gateway,
// then reloads the whole cart. A failed confirmation restores the snapshot taken
// before the change. The lock guards fields only and is never held across a
// gateway call, so overlapping mutations converge on the last completed reload.
type CartStore struct {
	mu         sync.RWMutex
	cart       *model.Cart
	partitions []model.SellerPartition
	pending    int
	lastError  error
	listeners  map[int]func(CartView)
	nextID     int

	gateway  gateway.CartGateway
	session  SessionProvider
	products ProductLookup
}

func NewCartStore(gw gateway.CartGateway, session SessionProvider, products ProductLookup) *CartStore {
	return &CartStore{
		gateway:   gw,
		session:   session,
		products:  products,
		listeners: make(map[int]func(CartView)),
	}
}

// View returns the current state. The returned cart is a copy.
func (s *CartStore) View() CartView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

func (s *CartStore) viewLocked() CartView {
	v := CartView{
		Cart:       s.cart.Clone(),
		Partitions: s.partitions,
		IsLoading:  s.pending > 0,
	}
	if s.lastError != nil {
		v.LastError = s.lastError.Error()
		v.ErrorCode = ErrorCode(s.lastError)
	}
	return v
}

// Subscribe registers fn to run after every state transition.
// The returned func removes it.
func (s *CartStore) Subscribe(fn func(CartView)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *CartStore) notify() {
	s.mu.RLock()
	view := s.viewLocked()
	fns := make([]func(CartView), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(view)
	}
}

// ClearError drops lastError. No network call.
func (s *CartStore) ClearError() {
	s.mu.Lock()
	s.lastError = nil
	s.mu.Unlock()
	s.notify()
}

// Reset empties the store; used at logout.
func (s *CartStore) Reset() {
	s.mu.Lock()
	s.cart = nil
	s.partitions = nil
	s.lastError = nil
	s.mu.Unlock()
	s.notify()
}

func (s *CartStore) credentials(ctx context.Context) (context.Context, string, error) {
	if s.session == nil {
		return ctx, "", ErrUnauthenticated
	}
	userID, token, ok := s.session.Credentials()
	if !ok || userID == "" {
		return ctx, "", ErrUnauthenticated
	}
	return gateway.WithToken(ctx, token), userID, nil
}

// ended reports whether the session went away, e.g. a logout while a gateway
// call was in flight. Results arriving after that are discarded.
func (s *CartStore) ended() bool {
	if s.session == nil {
		return true
	}
	_, _, ok := s.session.Credentials()
	return !ok
}

// Load replaces the cart with a fresh copy from the gateway.
func (s *CartStore) Load(ctx context.Context) error {
	ctx, userID, err := s.credentials(ctx)
	if err != nil {
		return err
	}

	logger.Info("Loading cart", map[string]interface{}{
		"user_id": userID,
	})

	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	s.notify()

	if err := s.reload(ctx, "load cart", userID); err != nil {
		return err
	}

	logger.Info("Cart loaded", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// reload fetches the authoritative cart and settles one pending operation.
// On failure the current state is kept and lastError is set.
func (s *CartStore) reload(ctx context.Context, op, userID string) error {
	cart, err := s.gateway.GetCart(ctx, userID)

	s.mu.Lock()
	s.pending--
	if s.ended() {
		s.mu.Unlock()
		logger.Debug("Discarding cart reload after session end", map[string]interface{}{
			"user_id": userID,
			"op":      op,
		})
		return ErrUnauthenticated
	}
	if err != nil {
		err = networkError(op, err)
		s.lastError = err
	} else {
		s.cart = cart
		s.partitions = PartitionBySeller(cart)
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		logger.Error("Failed to reload cart", err, map[string]interface{}{
			"user_id": userID,
			"op":      op,
		})
	}
	return err
}

// mutate runs one optimistic operation.
// apply works on a private copy of the cart (possibly nil) and returns the
// optimistic result; an error from apply aborts with no state change and no
// network call.
func (s *CartStore) mutate(
	ctx context.Context,
	op string,
	apply func(cart *model.Cart, userID string) (*model.Cart, error),
	confirm func(ctx context.Context, userID string) error,
) error {
	ctx, userID, err := s.credentials(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	snapshotCart := s.cart.Clone()
	snapshotPartitions := s.partitions
	next, err := apply(s.cart.Clone(), userID)
	if err != nil {
		s.mu.Unlock()
		logger.Warn("Cart mutation rejected", map[string]interface{}{
			"user_id": userID,
			"op":      op,
			"error":   err.Error(),
		})
		return err
	}
	s.cart = next
	s.partitions = PartitionBySeller(next)
	s.pending++
	s.mu.Unlock()
	s.notify()

	if err := confirm(ctx, userID); err != nil {
		err = networkError(op, err)

		s.mu.Lock()
		if s.ended() {
			s.pending--
			s.mu.Unlock()
			return ErrUnauthenticated
		}
		s.cart = snapshotCart
		s.partitions = snapshotPartitions
		s.pending--
		s.lastError = err
		s.mu.Unlock()
		s.notify()

		logger.Error("Cart mutation failed, rolled back", err, map[string]interface{}{
			"user_id": userID,
			"op":      op,
		})
		return err
	}

	return s.reload(ctx, op, userID)
}

// AddItem adds quantity of (productID, size). An existing line for the same
// selection is bumped instead of duplicated.
func (s *CartStore) AddItem(ctx context.Context, productID, size string, quantity int) error {
	if _, _, err := s.credentials(ctx); err != nil {
		return err
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	product, ok := s.products.Lookup(ctx, productID)
	if !ok {
		return ErrProductUnavailable
	}
	stock, ok := product.StockFor(size)
	if !ok {
		return ErrSizeUnavailable
	}
	if quantity > stock.Quantity {
		return ErrInsufficientStock
	}

	s.mu.RLock()
	idx := s.cart.FindSelection(productID, size)
	var existingID string
	var existingQty int
	if idx >= 0 {
		existingID = s.cart.CartItems[idx].ID
		existingQty = s.cart.CartItems[idx].Quantity
	}
	s.mu.RUnlock()

	if idx >= 0 {
		logger.Debug("Merging add into existing cart line", map[string]interface{}{
			"item_id":  existingID,
			"quantity": existingQty + quantity,
		})
		return s.UpdateQuantity(ctx, existingID, existingQty+quantity)
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"product_id": productID,
		"size":       size,
		"quantity":   quantity,
	})

	return s.mutate(ctx, "add item",
		func(cart *model.Cart, userID string) (*model.Cart, error) {
			if cart == nil {
				cart = &model.Cart{
					ID:        model.TempIDPrefix + "cart-" + uuid.NewString(),
					UserID:    userID,
					CartItems: []model.CartLineItem{},
				}
			}
			line := model.CartLineItem{
				ID:     model.TempIDPrefix + uuid.NewString(),
				CartID: cart.ID,
				SizeStock: model.SizeStock{
					ID:        stock.ID,
					ProductID: product.ID,
					Size:      size,
					Quantity:  stock.Quantity,
					Product:   product,
				},
				Quantity:   quantity,
				TotalPrice: money.LineTotal(product.Price, quantity),
			}
			cart.CartItems = append(cart.CartItems, line)
			cart.TotalCartValue = money.Sum(cart.TotalCartValue, line.TotalPrice)
			return cart, nil
		},
		func(ctx context.Context, userID string) error {
			return s.gateway.AddItem(ctx, userID, gateway.AddItemRequest{
				ProductID: productID,
				Size:      size,
				Quantity:  quantity,
			})
		},
	)
}

// UpdateQuantity sets a line's quantity.
func (s *CartStore) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	// resolve stock before taking the write lock; the catalog may hit redis
	s.mu.RLock()
	var current *model.CartLineItem
	if idx := s.cart.FindItem(itemID); idx >= 0 {
		item := s.cart.CartItems[idx]
		current = &item
	}
	s.mu.RUnlock()
	available, stockKnown := 0, false
	if current != nil {
		available, stockKnown = s.availableStock(ctx, current)
	}

	return s.mutate(ctx, "update quantity",
		func(cart *model.Cart, _ string) (*model.Cart, error) {
			idx := cart.FindItem(itemID)
			if idx < 0 {
				return nil, ErrItemNotFound
			}
			item := &cart.CartItems[idx]
			if stockKnown && quantity > available {
				return nil, ErrInsufficientStock
			}

			newTotal := money.LineTotal(item.UnitPrice(), quantity)
			cart.TotalCartValue = money.Sum(cart.TotalCartValue, money.Sub(newTotal, item.TotalPrice))
			item.Quantity = quantity
			item.TotalPrice = newTotal
			return cart, nil
		},
		func(ctx context.Context, userID string) error {
			return s.gateway.UpdateItem(ctx, userID, itemID, quantity)
		},
	)
}

// availableStock prefers the stock captured on the line and falls back to the catalog.
func (s *CartStore) availableStock(ctx context.Context, item *model.CartLineItem) (int, bool) {
	if item.SizeStock.Quantity > 0 {
		return item.SizeStock.Quantity, true
	}
	if s.products == nil {
		return 0, false
	}
	product, ok := s.products.Lookup(ctx, item.ProductID())
	if !ok {
		return 0, false
	}
	stock, ok := product.StockFor(item.SizeStock.Size)
	if !ok {
		return 0, false
	}
	return stock.Quantity, true
}

// RemoveItem deletes one line.
func (s *CartStore) RemoveItem(ctx context.Context, itemID string) error {
	return s.mutate(ctx, "remove item",
		func(cart *model.Cart, _ string) (*model.Cart, error) {
			idx := cart.FindItem(itemID)
			if idx < 0 {
				return nil, ErrItemNotFound
			}
			removed := cart.CartItems[idx].TotalPrice
			cart.CartItems = append(cart.CartItems[:idx], cart.CartItems[idx+1:]...)
			cart.TotalCartValue = money.Sub(cart.TotalCartValue, removed)
			return cart, nil
		},
		func(ctx context.Context, userID string) error {
			return s.gateway.RemoveItem(ctx, userID, itemID)
		},
	)
}

// RemoveSellerItems deletes every line owned by sellerID.
func (s *CartStore) RemoveSellerItems(ctx context.Context, sellerID string) error {
	return s.mutate(ctx, "remove seller items",
		func(cart *model.Cart, _ string) (*model.Cart, error) {
			if cart == nil {
				return nil, ErrItemNotFound
			}
			kept := make([]model.CartLineItem, 0, len(cart.CartItems))
			removed := make([]float64, 0)
			for _, item := range cart.CartItems {
				if item.SellerID() == sellerID {
					removed = append(removed, item.TotalPrice)
					continue
				}
				kept = append(kept, item)
			}
			if len(removed) == 0 {
				return nil, ErrItemNotFound
			}
			cart.CartItems = kept
			cart.TotalCartValue = money.Sub(cart.TotalCartValue, money.Sum(removed...))
			return cart, nil
		},
		func(ctx context.Context, userID string) error {
			removal, err := s.gateway.RemoveSellerItems(ctx, userID, sellerID)
			if err != nil {
				return err
			}
			logger.Info("Seller items removed upstream", map[string]interface{}{
				"user_id":         userID,
				"seller_id":       sellerID,
				"deleted_count":   removal.DeletedCount,
				"price_reduction": removal.PriceReduction,
			})
			return nil
		},
	)
}
