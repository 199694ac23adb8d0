package service

import (
	"errors"
	"fmt"

	apperrors "github.com/ikkim/shopfront/internal/errors"
	"github.com/ikkim/shopfront/internal/gateway"
)

var (
	ErrUnauthenticated        = errors.New("no authenticated session")
	ErrProductUnavailable     = errors.New("product not available")
	ErrSizeUnavailable        = errors.New("size not available for product")
	ErrInsufficientStock      = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrItemNotFound           = errors.New("cart item not found")
	ErrIncompleteAddress      = errors.New("delivery address is incomplete")
	ErrMissingPhoneNumber     = errors.New("phone number is required")
	ErrNetworkFailure         = errors.New("network failure")
	ErrPartialCheckoutFailure = errors.New("some seller orders failed")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrInvalidTransition      = errors.New("invalid order status transition")
	ErrOrderNotFound          = errors.New("order not found")
	ErrAddressNotFound        = errors.New("address not found")
	ErrForbidden              = errors.New("not allowed to act on this resource")
)

// networkError wraps a gateway failure as ErrNetworkFailure, keeping the cause.
// An upstream 401 becomes ErrUnauthenticated.
func networkError(op string, err error) error {
	if errors.Is(err, gateway.ErrUnauthorized) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrNetworkFailure, err)
}

// ErrorCode maps a service error to the code the app shows; "" for nil.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return apperrors.AuthUnauthorized
	case errors.Is(err, ErrProductUnavailable):
		return apperrors.CartProductUnavailable
	case errors.Is(err, ErrSizeUnavailable):
		return apperrors.CartSizeUnavailable
	case errors.Is(err, ErrInsufficientStock):
		return apperrors.CartInsufficientStock
	case errors.Is(err, ErrInvalidQuantity):
		return apperrors.CartInvalidQuantity
	case errors.Is(err, ErrItemNotFound):
		return apperrors.CartItemNotFound
	case errors.Is(err, ErrEmptyCart):
		return apperrors.CartEmpty
	case errors.Is(err, ErrIncompleteAddress):
		return apperrors.CheckoutIncompleteAddress
	case errors.Is(err, ErrMissingPhoneNumber):
		return apperrors.CheckoutMissingPhone
	case errors.Is(err, ErrInvalidPaymentMethod):
		return apperrors.CheckoutInvalidPaymentMethod
	case errors.Is(err, ErrPartialCheckoutFailure):
		return apperrors.CheckoutPartialFailure
	case errors.Is(err, ErrInvalidTransition):
		return apperrors.OrderInvalidTransition
	case errors.Is(err, ErrOrderNotFound):
		return apperrors.OrderNotFound
	case errors.Is(err, ErrAddressNotFound):
		return apperrors.AddressNotFound
	case errors.Is(err, ErrForbidden):
		return apperrors.AuthzForbidden
	case errors.Is(err, ErrNetworkFailure):
		return apperrors.UpstreamUnavailable
	default:
		return apperrors.InternalServerError
	}
}
