package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/app/service"
	"github.com/ikkim/shopfront/internal/middleware"
)

type CheckoutController struct {
	sessions  *service.SessionRegistry
	checkout  service.CheckoutService
	addresses service.AddressService
}

func NewCheckoutController(
	sessions *service.SessionRegistry,
	checkout service.CheckoutService,
	addresses service.AddressService,
) *CheckoutController {
	return &CheckoutController{
		sessions:  sessions,
		checkout:  checkout,
		addresses: addresses,
	}
}

// CheckoutRequest selects a saved address and/or enters one by hand.
// Manual street-level fields override the saved address.
type CheckoutRequest struct {
	SavedAddressID string              `json:"saved_address_id"`
	Street         string              `json:"street"`
	Ward           string              `json:"ward"`
	District       string              `json:"district"`
	Province       string              `json:"province"`
	Phone          string              `json:"phone"`
	PostalCode     string              `json:"postal_code"`
	PaymentMethod  model.PaymentMethod `json:"payment_method" binding:"required"`
	SaveAddress    bool                `json:"save_address"`
}

func (ctrl *CheckoutController) form(c *gin.Context, userID string, req CheckoutRequest) (*service.AddressForm, error) {
	form := &service.AddressForm{}
	if req.SavedAddressID != "" {
		saved, err := ctrl.addresses.Get(upstreamContext(c), userID, req.SavedAddressID)
		if err != nil {
			return nil, err
		}
		form.SelectSaved(saved)
	}

	setters := []struct {
		value string
		set   func(string)
	}{
		{req.Street, form.SetStreet},
		{req.Ward, form.SetWard},
		{req.District, form.SetDistrict},
		{req.Province, form.SetProvince},
		{req.Phone, form.SetPhone},
		{req.PostalCode, form.SetPostalCode},
	}
	for _, s := range setters {
		if s.value != "" {
			s.set(s.value)
		}
	}
	return form, nil
}

// Checkout places one order per seller in the cart.
// POST /api/v1/checkout
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, token, ok := requireUser(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	form, err := ctrl.form(c, userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	store := ctrl.sessions.Acquire(userID, token)
	result, err := ctrl.checkout.Checkout(upstreamContext(c), store, service.CheckoutRequest{
		Form:          form,
		PaymentMethod: req.PaymentMethod,
		SaveAddress:   req.SaveAddress,
		TraceID:       middleware.GetRequestID(c),
	})
	if result == nil {
		respondServiceError(c, err)
		return
	}

	// orders were attempted: the app needs every outcome, even on failure
	status := http.StatusCreated
	body := gin.H{
		"checkout": result,
		"cart":     store.View(),
	}
	if err != nil {
		status = serviceStatus(err)
		body["error"] = service.ErrorCode(err)
		if errors.Is(err, service.ErrPartialCheckoutFailure) {
			body["message"] = serviceMessages[service.ErrorCode(err)]
		}
		log.Warn("Checkout finished with failures", map[string]interface{}{
			"checkout_id": result.CheckoutID,
			"error":       err.Error(),
		})
	}

	c.JSON(status, body)
}
