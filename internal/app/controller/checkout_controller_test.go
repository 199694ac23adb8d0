package controller

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/app/service"
	apperrors "github.com/ikkim/shopfront/internal/errors"
	"github.com/ikkim/shopfront/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutResponse struct {
	Checkout service.CheckoutResult `json:"checkout"`
	Cart     service.CartView       `json:"cart"`
	Error    string                 `json:"error"`
}

func setupCheckoutControllerTest(t *testing.T) (*gin.Engine, *memoryUpstream, *service.SessionRegistry) {
	upstream := newMemoryUpstream(ringProduct(), shirtProduct())
	catalog := service.NewCatalog(upstream, nil, time.Minute)
	registry := service.NewSessionRegistry(upstream, catalog)
	checkoutService := service.NewCheckoutService(upstream, upstream, nil, nil, 2)
	addressService := service.NewAddressService(upstream)
	checkoutController := NewCheckoutController(registry, checkoutService, addressService)

	router := newTestRouter(asUser("u1", middleware.RoleUser, ""))
	router.POST("/checkout", checkoutController.Checkout)

	return router, upstream, registry
}

// loadCart fills the user's store the way the app does before checkout.
func loadCart(t *testing.T, upstream *memoryUpstream, registry *service.SessionRegistry) {
	upstream.seedCart("u1", "p-ring", "7", 1)
	upstream.seedCart("u1", "p-shirt", "M", 2)
	require.NoError(t, registry.Acquire("u1", "token-u1").Load(context.Background()))
}

func manualCheckout() CheckoutRequest {
	return CheckoutRequest{
		Street:        "12 Main St",
		Ward:          "Ward 5",
		District:      "District 3",
		Province:      "City",
		Phone:         "5551234",
		PaymentMethod: model.PaymentCOD,
	}
}

func TestCheckoutController_Checkout_Success(t *testing.T) {
	router, upstream, registry := setupCheckoutControllerTest(t)
	loadCart(t, upstream, registry)

	w := doJSON(t, router, http.MethodPost, "/checkout", manualCheckout())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body checkoutResponse
	decodeBody(t, w, &body)
	assert.Empty(t, body.Error)
	assert.NotEmpty(t, body.Checkout.CheckoutID)
	assert.Equal(t, "12 Main St, Ward 5, District 3, City", body.Checkout.Address)
	require.Len(t, body.Checkout.Outcomes, 2)
	for _, o := range body.Checkout.Outcomes {
		assert.True(t, o.Succeeded, o.SellerID)
		assert.True(t, o.CartCleared, o.SellerID)
		require.NotNil(t, o.Order)
		assert.Equal(t, model.OrderStatusPending, o.Order.Status)
	}
	assert.Equal(t, float64(20), body.Checkout.Outcomes[0].Subtotal)
	assert.Equal(t, float64(30), body.Checkout.Outcomes[1].Subtotal)
	assert.Empty(t, body.Cart.Cart.CartItems)
	assert.Len(t, upstream.orders, 2)
}

func TestCheckoutController_Checkout_PartialFailure(t *testing.T) {
	router, upstream, registry := setupCheckoutControllerTest(t)
	loadCart(t, upstream, registry)
	upstream.failSellers["seller-b"] = true

	w := doJSON(t, router, http.MethodPost, "/checkout", manualCheckout())

	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())
	var body checkoutResponse
	decodeBody(t, w, &body)
	assert.Equal(t, apperrors.CheckoutPartialFailure, body.Error)
	require.Len(t, body.Checkout.Outcomes, 2)
	assert.True(t, body.Checkout.Outcomes[0].Succeeded)
	assert.False(t, body.Checkout.Outcomes[1].Succeeded)
	assert.NotEmpty(t, body.Checkout.Outcomes[1].Error)

	// the failed seller's items stay in the cart for a retry
	require.Len(t, body.Cart.Cart.CartItems, 1)
	assert.Equal(t, "p-shirt", body.Cart.Cart.CartItems[0].ProductID())
}

func TestCheckoutController_Checkout_AllFailed(t *testing.T) {
	router, upstream, registry := setupCheckoutControllerTest(t)
	loadCart(t, upstream, registry)
	upstream.failSellers["seller-a"] = true
	upstream.failSellers["seller-b"] = true

	w := doJSON(t, router, http.MethodPost, "/checkout", manualCheckout())

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body checkoutResponse
	decodeBody(t, w, &body)
	assert.Equal(t, apperrors.UpstreamUnavailable, body.Error)
	assert.Len(t, body.Cart.Cart.CartItems, 2)
}

func TestCheckoutController_Checkout_SavedAddress(t *testing.T) {
	router, upstream, registry := setupCheckoutControllerTest(t)
	loadCart(t, upstream, registry)
	upstream.seedAddress(model.DeliveryAddress{
		ID:          "addr-home",
		OwnerUserID: "u1",
		Street:      "1 Home Rd",
		Province:    "Metro",
		Phone:       "555",
	})

	w := doJSON(t, router, http.MethodPost, "/checkout", CheckoutRequest{
		SavedAddressID: "addr-home",
		PaymentMethod:  model.PaymentVietQR,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body checkoutResponse
	decodeBody(t, w, &body)
	assert.Equal(t, "1 Home Rd, Metro", body.Checkout.Address)
	assert.Equal(t, "555", body.Checkout.Phone)
	for _, o := range body.Checkout.Outcomes {
		assert.Equal(t, "1 Home Rd, Metro", o.Order.Address)
		assert.Equal(t, model.PaymentVietQR, o.Order.PaymentMethod)
	}
}

func TestCheckoutController_Checkout_ManualOverridesSaved(t *testing.T) {
	router, upstream, registry := setupCheckoutControllerTest(t)
	loadCart(t, upstream, registry)
	upstream.seedAddress(model.DeliveryAddress{
		ID: "addr-home", OwnerUserID: "u1", Street: "1 Home Rd", Province: "Metro", Phone: "555",
	})

	req := manualCheckout()
	req.SavedAddressID = "addr-home"
	req.Phone = ""
	req.SaveAddress = true
	w := doJSON(t, router, http.MethodPost, "/checkout", req)

	// the saved phone is dropped with the saved address
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CheckoutMissingPhone, errorCode(t, w))

	req.Phone = "5551234"
	w = doJSON(t, router, http.MethodPost, "/checkout", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body checkoutResponse
	decodeBody(t, w, &body)
	assert.Equal(t, "12 Main St, Ward 5, District 3, City", body.Checkout.Address)
	assert.True(t, body.Checkout.AddressSaved)
	assert.Len(t, upstream.addresses, 2)
}

func TestCheckoutController_Checkout_Rejected(t *testing.T) {
	noPhone := manualCheckout()
	noPhone.Phone = ""
	card := manualCheckout()
	card.PaymentMethod = "CARD"
	unknownAddress := manualCheckout()
	unknownAddress.SavedAddressID = "addr-missing"

	tests := []struct {
		name       string
		emptyCart  bool
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"Empty cart", true, manualCheckout(), http.StatusBadRequest, apperrors.CartEmpty},
		{"Missing phone", false, noPhone, http.StatusBadRequest, apperrors.CheckoutMissingPhone},
		{"Blank address", false, CheckoutRequest{Phone: "1", PaymentMethod: model.PaymentCOD}, http.StatusBadRequest, apperrors.CheckoutIncompleteAddress},
		{"Unsupported payment", false, card, http.StatusBadRequest, apperrors.CheckoutInvalidPaymentMethod},
		{"Unknown saved address", false, unknownAddress, http.StatusNotFound, apperrors.AddressNotFound},
		{"No payment method", false, map[string]string{"street": "x", "phone": "1"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, upstream, registry := setupCheckoutControllerTest(t)
			if !tt.emptyCart {
				loadCart(t, upstream, registry)
			}

			w := doJSON(t, router, http.MethodPost, "/checkout", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
			assert.Empty(t, upstream.orders)
		})
	}
}
