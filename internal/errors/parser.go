package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code plus a user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns infrastructure errors (database, network) into an ErrorInfo.
// Driver details never reach the message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	errLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	// postgres 23505
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
	}

	// postgres 23503 / 23502 / 23514
	if strings.Contains(errLower, "foreign key constraint") ||
		strings.Contains(errLower, "violates not-null constraint") ||
		strings.Contains(errLower, "check constraint") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "The record could not be saved"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    UpstreamUnavailable,
			Message: "A dependent service is unreachable. Please try again",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func notFoundMessage(context string) string {
	switch context {
	case "checkout":
		return "Checkout record not found"
	case "order":
		return "Order not found"
	case "address":
		return "Address not found"
	default:
		return "Not found"
	}
}

func defaultMessage(context string) string {
	switch context {
	case "report":
		return "Failed to export the report"
	case "checkout":
		return "Failed to record the checkout"
	default:
		return "Something went wrong. Please try again later"
	}
}
