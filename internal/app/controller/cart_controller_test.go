package controller

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/service"
	apperrors "github.com/ikkim/shopfront/internal/errors"
	"github.com/ikkim/shopfront/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartControllerTest(t *testing.T) (*gin.Engine, *memoryUpstream, *service.Catalog) {
	upstream := newMemoryUpstream(ringProduct(), shirtProduct())
	catalog := service.NewCatalog(upstream, nil, time.Minute)
	registry := service.NewSessionRegistry(upstream, catalog)
	cartController := NewCartController(registry)

	router := newTestRouter(asUser("u1", middleware.RoleUser, ""))
	router.GET("/cart", cartController.GetCart)
	router.POST("/cart/load", cartController.LoadCart)
	router.POST("/cart/items", cartController.AddItem)
	router.PATCH("/cart/items/:id", cartController.UpdateItem)
	router.DELETE("/cart/items/:id", cartController.RemoveItem)
	router.DELETE("/cart/sellers/:sellerId", cartController.RemoveSellerItems)
	router.DELETE("/cart/error", cartController.ClearError)

	return router, upstream, catalog
}

func cartView(t *testing.T, router *gin.Engine) service.CartView {
	t.Helper()
	var view service.CartView
	resp := doJSON(t, router, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp, &view)
	return view
}

func TestCartController_GetCart_Empty(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)

	w := doJSON(t, router, http.MethodGet, "/cart", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var view service.CartView
	decodeBody(t, w, &view)
	assert.Nil(t, view.Cart)
	assert.Empty(t, view.Partitions)
	assert.False(t, view.IsLoading)
}

func TestCartController_LoadCart(t *testing.T) {
	router, upstream, _ := setupCartControllerTest(t)
	upstream.seedCart("u1", "p-ring", "7", 2)
	upstream.seedCart("u1", "p-shirt", "M", 1)

	w := doJSON(t, router, http.MethodPost, "/cart/load", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var view service.CartView
	decodeBody(t, w, &view)
	require.NotNil(t, view.Cart)
	assert.Len(t, view.Cart.CartItems, 2)
	assert.Equal(t, float64(55), view.Cart.TotalCartValue)
	require.Len(t, view.Partitions, 2)
	assert.Equal(t, "seller-a", view.Partitions[0].SellerID)
	assert.Equal(t, "Shop A", view.Partitions[0].SellerName)
	assert.Equal(t, float64(40), view.Partitions[0].Subtotal)
	assert.Equal(t, "seller-b", view.Partitions[1].SellerID)
}

func TestCartController_AddItem_Success(t *testing.T) {
	router, _, catalog := setupCartControllerTest(t)
	_, err := catalog.Fetch(context.Background(), "p-shirt")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/cart/items", AddToCartRequest{
		ProductID: "p-shirt",
		Size:      "M",
		Quantity:  2,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view service.CartView
	decodeBody(t, w, &view)
	require.NotNil(t, view.Cart)
	require.Len(t, view.Cart.CartItems, 1)
	assert.Equal(t, "item-1", view.Cart.CartItems[0].ID)
	assert.Equal(t, 2, view.Cart.CartItems[0].Quantity)
	assert.Equal(t, float64(30), view.Cart.TotalCartValue)
	require.Len(t, view.Partitions, 1)
	assert.Equal(t, "seller-b", view.Partitions[0].SellerID)
}

func TestCartController_AddItem_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"Not browsed", AddToCartRequest{ProductID: "p-cap", Size: "M", Quantity: 1}, http.StatusBadRequest, apperrors.CartProductUnavailable},
		{"Unknown size", AddToCartRequest{ProductID: "p-shirt", Size: "XL", Quantity: 1}, http.StatusBadRequest, apperrors.CartSizeUnavailable},
		{"Zero quantity", AddToCartRequest{ProductID: "p-shirt", Size: "M", Quantity: 0}, http.StatusBadRequest, apperrors.CartInvalidQuantity},
		{"Over stock", AddToCartRequest{ProductID: "p-shirt", Size: "M", Quantity: 11}, http.StatusBadRequest, apperrors.CartInsufficientStock},
		{"Missing product", map[string]interface{}{"size": "M", "quantity": 1}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, catalog := setupCartControllerTest(t)
			_, err := catalog.Fetch(context.Background(), "p-shirt")
			require.NoError(t, err)

			w := doJSON(t, router, http.MethodPost, "/cart/items", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestCartController_UpdateItem(t *testing.T) {
	router, upstream, _ := setupCartControllerTest(t)
	upstream.seedCart("u1", "p-shirt", "M", 1)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/cart/load", nil).Code)

	w := doJSON(t, router, http.MethodPatch, "/cart/items/item-1", UpdateCartRequest{Quantity: 3})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view service.CartView
	decodeBody(t, w, &view)
	assert.Equal(t, 3, view.Cart.CartItems[0].Quantity)
	assert.Equal(t, float64(45), view.Cart.TotalCartValue)

	w = doJSON(t, router, http.MethodPatch, "/cart/items/item-9", UpdateCartRequest{Quantity: 3})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CartItemNotFound, errorCode(t, w))

	w = doJSON(t, router, http.MethodPatch, "/cart/items/item-1", UpdateCartRequest{Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CartInvalidQuantity, errorCode(t, w))
}

func TestCartController_RemoveItem_UpstreamDown(t *testing.T) {
	router, upstream, _ := setupCartControllerTest(t)
	upstream.seedCart("u1", "p-shirt", "M", 1)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/cart/load", nil).Code)

	upstream.setDown(true)
	w := doJSON(t, router, http.MethodDelete, "/cart/items/item-1", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, apperrors.UpstreamUnavailable, errorCode(t, w))

	// rolled back, error kept until dismissed
	view := cartView(t, router)
	assert.Len(t, view.Cart.CartItems, 1)
	assert.NotEmpty(t, view.LastError)
	assert.Equal(t, apperrors.UpstreamUnavailable, view.ErrorCode)

	w = doJSON(t, router, http.MethodDelete, "/cart/error", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = cartView(t, router)
	assert.Empty(t, view.LastError)

	upstream.setDown(false)
	w = doJSON(t, router, http.MethodDelete, "/cart/items/item-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &view)
	assert.Empty(t, view.Cart.CartItems)
}

func TestCartController_RemoveSellerItems(t *testing.T) {
	router, upstream, _ := setupCartControllerTest(t)
	upstream.seedCart("u1", "p-ring", "7", 1)
	upstream.seedCart("u1", "p-shirt", "M", 2)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/cart/load", nil).Code)

	w := doJSON(t, router, http.MethodDelete, "/cart/sellers/seller-a", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var view service.CartView
	decodeBody(t, w, &view)
	require.Len(t, view.Cart.CartItems, 1)
	assert.Equal(t, "p-shirt", view.Cart.CartItems[0].ProductID())
	require.Len(t, view.Partitions, 1)
	assert.Equal(t, "seller-b", view.Partitions[0].SellerID)

	w = doJSON(t, router, http.MethodDelete, "/cart/sellers/seller-z", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_Unauthenticated(t *testing.T) {
	upstream := newMemoryUpstream()
	registry := service.NewSessionRegistry(upstream, service.NewCatalog(upstream, nil, time.Minute))
	cartController := NewCartController(registry)
	router := newTestRouter()
	router.GET("/cart", cartController.GetCart)

	w := doJSON(t, router, http.MethodGet, "/cart", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.AuthUnauthorized, errorCode(t, w))
	assert.Equal(t, 0, registry.Count())
}
