package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/service"
	apperrors "github.com/ikkim/shopfront/internal/errors"
	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/internal/middleware"
)

// serviceStatus maps a service sentinel to the HTTP status the app expects.
func serviceStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrAddressNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrSizeUnavailable),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrIncompleteAddress),
		errors.Is(err, service.ErrMissingPhoneNumber),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPartialCheckoutFailure):
		return http.StatusMultiStatus
	case errors.Is(err, service.ErrNetworkFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var serviceMessages = map[string]string{
	apperrors.AuthUnauthorized:             "Please sign in again",
	apperrors.AuthzForbidden:               "You cannot act on this resource",
	apperrors.CartProductUnavailable:       "This product is no longer available",
	apperrors.CartSizeUnavailable:          "This size is not available",
	apperrors.CartInsufficientStock:        "Not enough stock for that quantity",
	apperrors.CartInvalidQuantity:          "Quantity must be at least 1",
	apperrors.CartItemNotFound:             "Cart item not found",
	apperrors.CartEmpty:                    "Your cart is empty",
	apperrors.CheckoutIncompleteAddress:    "Please complete the delivery address",
	apperrors.CheckoutMissingPhone:         "Please enter a phone number",
	apperrors.CheckoutInvalidPaymentMethod: "Unsupported payment method",
	apperrors.CheckoutPartialFailure:       "Some orders could not be placed",
	apperrors.OrderInvalidTransition:       "The order cannot move to that status",
	apperrors.OrderNotFound:                "Order not found",
	apperrors.AddressNotFound:              "Address not found",
	apperrors.UpstreamUnavailable:          "The store service is unreachable. Please try again",
}

// respondServiceError writes the code and status for a service error.
func respondServiceError(c *gin.Context, err error) {
	code := service.ErrorCode(err)
	status := serviceStatus(err)
	message, ok := serviceMessages[code]
	if !ok {
		message = "Something went wrong. Please try again later"
	}

	log := middleware.GetLoggerFromContext(c)
	fields := map[string]interface{}{
		"code":   code,
		"status": status,
	}
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", err, fields)
	} else {
		fields["error"] = err.Error()
		log.Warn("Request rejected", fields)
	}

	apperrors.RespondWithError(c, status, code, message)
}

// requireUser returns the authenticated user id and token, answering 401 otherwise.
func requireUser(c *gin.Context) (string, string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return "", "", false
	}
	token, _ := middleware.GetToken(c)
	return userID, token, true
}

// upstreamContext forwards the caller's bearer token to gateway calls.
func upstreamContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if token, ok := middleware.GetToken(c); ok && token != "" {
		ctx = gateway.WithToken(ctx, token)
	}
	return ctx
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithValidationError(c, map[string]string{"body": err.Error()})
		return false
	}
	return true
}
