package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Kiranppatil21/glass/internal/advance"
	"github.com/Kiranppatil21/glass/internal/credit"
	customerdomain "github.com/Kiranppatil21/glass/internal/customer/domain"
	"github.com/Kiranppatil21/glass/internal/gateway/razorpay"
	orderdomain "github.com/Kiranppatil21/glass/internal/order/domain"
	"github.com/Kiranppatil21/glass/internal/pricing"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, orderdomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, credit.ErrLimitExceeded):
		return http.StatusConflict, errorPayload{
			Type:    "credit_limit_exceeded",
			Message: "credit limit exceeded",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, razorpay.ErrGateway),
		errors.Is(err, razorpay.ErrNotConfigured):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "payment gateway unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pricing.ErrInvalidLineItem),
		errors.Is(err, razorpay.ErrSignatureMismatch),
		errors.Is(err, customerdomain.ErrInvalidID):
		return true
	case isAdvanceValidationError(err),
		isOrderValidationError(err):
		return true
	default:
		return false
	}
}

func isAdvanceValidationError(err error) bool {
	switch {
	case errors.Is(err, advance.ErrInvalidPercent),
		errors.Is(err, advance.ErrBelowMinimum),
		errors.Is(err, advance.ErrNotAllowedValue):
		return true
	default:
		return false
	}
}

func isOrderValidationError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrCustomerNameRequired),
		errors.Is(err, orderdomain.ErrCustomerPhoneRequired),
		errors.Is(err, orderdomain.ErrNothingToPay),
		errors.Is(err, orderdomain.ErrInvalidLeg):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, pricing.ErrInvalidLineItem):
		return "invalid_line_item"
	case errors.Is(err, razorpay.ErrSignatureMismatch):
		return "payment_verification_failed"
	case errors.Is(err, advance.ErrInvalidPercent),
		errors.Is(err, advance.ErrBelowMinimum),
		errors.Is(err, advance.ErrNotAllowedValue):
		return "invalid_advance_percent"
	default:
		return strings.SplitN(err.Error(), ":", 2)[0]
	}
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "invalid_line_item":
		return "glass_items"
	case "invalid_advance_percent":
		return "advance_percent"
	case "payment_verification_failed":
		return "razorpay_signature"
	case "customer_name_required":
		return "customer_name"
	case "customer_phone_required":
		return "customer_phone"
	case "invalid_payment_leg":
		return "leg"
	default:
		return ""
	}
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "payment_verification_failed":
		return "payment verification failed"
	default:
		return "invalid value"
	}
}
