package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/service"
	"github.com/ikkim/shopfront/internal/middleware"
)

type CartController struct {
	sessions *service.SessionRegistry
}

func NewCartController(sessions *service.SessionRegistry) *CartController {
	return &CartController{
		sessions: sessions,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (ctrl *CartController) store(c *gin.Context) (*service.CartStore, bool) {
	userID, token, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	return ctrl.sessions.Acquire(userID, token), true
}

// respond answers with the store's view, or the error when the mutation failed.
func (ctrl *CartController) respond(c *gin.Context, store *service.CartStore, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, store.View())
}

// GetCart returns the current view without contacting the upstream.
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, store.View())
}

// LoadCart reloads the cart from the upstream.
// POST /api/v1/cart/load
func (ctrl *CartController) LoadCart(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}
	ctrl.respond(c, store, store.Load(c.Request.Context()))
}

// AddItem adds a product size to the cart.
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	middleware.GetLoggerFromContext(c).Debug("Adding item to cart", map[string]interface{}{
		"product_id": req.ProductID,
		"size":       req.Size,
		"quantity":   req.Quantity,
	})

	ctrl.respond(c, store, store.AddItem(c.Request.Context(), req.ProductID, req.Size, req.Quantity))
}

// UpdateItem sets a line item's quantity.
// PATCH /api/v1/cart/items/:id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	var req UpdateCartRequest
	if !bindJSON(c, &req) {
		return
	}

	ctrl.respond(c, store, store.UpdateQuantity(c.Request.Context(), c.Param("id"), req.Quantity))
}

// RemoveItem deletes one line item.
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}
	ctrl.respond(c, store, store.RemoveItem(c.Request.Context(), c.Param("id")))
}

// RemoveSellerItems deletes every line of one seller.
// DELETE /api/v1/cart/sellers/:sellerId
func (ctrl *CartController) RemoveSellerItems(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}
	ctrl.respond(c, store, store.RemoveSellerItems(c.Request.Context(), c.Param("sellerId")))
}

// ClearError dismisses the last network error.
// DELETE /api/v1/cart/error
func (ctrl *CartController) ClearError(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}
	store.ClearError()
	c.JSON(http.StatusOK, store.View())
}
