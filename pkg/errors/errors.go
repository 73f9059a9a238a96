package errors

import (
	"fmt"
	"net/http"
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeCouponExpired      = "COUPON_EXPIRED"
	CodeCouponNotYetValid  = "COUPON_NOT_YET_VALID"
	CodeCouponLimitReached = "COUPON_LIMIT_REACHED"
	CodePaymentSetup       = "PAYMENT_SETUP_ERROR"
	CodePaymentCancelled   = "PAYMENT_CANCELLED"
	CodePersistence        = "PERSISTENCE_ERROR"
	CodePartialPersistence = "PARTIAL_PERSISTENCE_ERROR"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func CouponExpired() *AppError {
	return &AppError{
		Code:       CodeCouponExpired,
		Message:    "Coupon has expired",
		HTTPStatus: http.StatusBadRequest,
	}
}

func CouponNotYetValid() *AppError {
	return &AppError{
		Code:       CodeCouponNotYetValid,
		Message:    "Coupon is not valid yet",
		HTTPStatus: http.StatusBadRequest,
	}
}

func CouponLimitReached() *AppError {
	return &AppError{
		Code:       CodeCouponLimitReached,
		Message:    "Coupon usage limit reached",
		HTTPStatus: http.StatusBadRequest,
	}
}

func PaymentSetup(message string, err error) *AppError {
	return &AppError{
		Code:       CodePaymentSetup,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func PaymentCancelled() *AppError {
	return &AppError{
		Code:       CodePaymentCancelled,
		Message:    "Payment was cancelled before completion",
		HTTPStatus: http.StatusConflict,
	}
}

// Persistence marks a write failure after payment capture. Details always carry
// reconciliation_required so the failure can be picked up for manual review.
func Persistence(message string, err error, details map[string]any) *AppError {
	if details == nil {
		details = map[string]any{}
	}
	details["reconciliation_required"] = true
	return &AppError{
		Code:       CodePersistence,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Details:    details,
		Err:        err,
	}
}

// PartialPersistence marks a participant write failure after booking rows were
// durably created. Booking ids are carried so enrichment can be re-driven by hand.
func PartialPersistence(message string, err error, bookingIDs []string) *AppError {
	return &AppError{
		Code:       CodePartialPersistence,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Details: map[string]any{
			"booking_ids": bookingIDs,
		},
		Err: err,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
