package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/pkg/logger"
)

// ProductCache is a shared second-level cache for loaded products.
type ProductCache interface {
	Get(ctx context.Context, id string, dest interface{}) (bool, error)
	Set(ctx context.Context, id string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Catalog holds products the app has browsed. Cart additions resolve against
// it and never trigger an upstream product fetch.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]*model.Product

	gateway gateway.CatalogGateway
	cache   ProductCache
	ttl     time.Duration
}

// NewCatalog creates a catalog. cache may be nil.
func NewCatalog(gw gateway.CatalogGateway, cache ProductCache, ttl time.Duration) *Catalog {
	return &Catalog{
		products: make(map[string]*model.Product),
		gateway:  gw,
		cache:    cache,
		ttl:      ttl,
	}
}

// Fetch loads one product from upstream and remembers it.
func (c *Catalog) Fetch(ctx context.Context, productID string) (*model.Product, error) {
	product, err := c.gateway.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			c.forget(ctx, productID)
			return nil, ErrProductUnavailable
		}
		return nil, networkError("fetch product", err)
	}
	c.remember(ctx, product)
	return product, nil
}

// List loads a page of products from upstream and remembers them.
func (c *Catalog) List(ctx context.Context, q gateway.ProductQuery) ([]model.Product, error) {
	products, err := c.gateway.ListProducts(ctx, q)
	if err != nil {
		return nil, networkError("list products", err)
	}
	for i := range products {
		p := products[i]
		c.remember(ctx, &p)
	}

	logger.Debug("Catalog page loaded", map[string]interface{}{
		"count": len(products),
		"page":  q.Page,
	})
	return products, nil
}

// Lookup checks memory, then the shared cache.
func (c *Catalog) Lookup(ctx context.Context, productID string) (*model.Product, bool) {
	c.mu.RLock()
	p, ok := c.products[productID]
	c.mu.RUnlock()
	if ok {
		return p, true
	}
	if c.cache == nil {
		return nil, false
	}

	var cached model.Product
	found, err := c.cache.Get(ctx, productID, &cached)
	if err != nil {
		logger.Warn("Product cache read failed", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil, false
	}
	if !found {
		return nil, false
	}

	c.mu.Lock()
	c.products[productID] = &cached
	c.mu.Unlock()
	return &cached, true
}

// RefreshCached re-fetches every remembered product so stock stays current.
// Products that no longer exist upstream are forgotten.
func (c *Catalog) RefreshCached(ctx context.Context) (int, error) {
	c.mu.RLock()
	ids := make([]string, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	refreshed := 0
	var errs []error
	for _, id := range ids {
		product, err := c.gateway.GetProduct(ctx, id)
		if errors.Is(err, gateway.ErrNotFound) {
			c.forget(ctx, id)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("product %s: %w", id, err))
			continue
		}
		c.remember(ctx, product)
		refreshed++
	}

	if len(errs) > 0 {
		return refreshed, networkError("refresh catalog", errors.Join(errs...))
	}
	return refreshed, nil
}

// Size reports how many products are held in memory.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

func (c *Catalog) remember(ctx context.Context, product *model.Product) {
	if product == nil || product.ID == "" {
		return
	}
	c.mu.Lock()
	c.products[product.ID] = product
	c.mu.Unlock()

	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, product.ID, product, c.ttl); err != nil {
		logger.Warn("Product cache write failed", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
	}
}

// forget drops a product from memory and from the shared cache, so a later
// Lookup cannot bring it back.
func (c *Catalog) forget(ctx context.Context, productID string) {
	c.mu.Lock()
	delete(c.products, productID)
	c.mu.Unlock()

	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, productID); err != nil {
		logger.Warn("Product cache delete failed", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
	}
}
