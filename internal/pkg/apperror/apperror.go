// Package apperror defines the typed failures the pricing pipeline raises and
// how they translate to an HTTP status and a {code, message} payload.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a failure kind. It is stable and safe to expose to clients.
type Code string

const (
	CodeValidation                Code = "ValidationError"
	CodeProductUnavailable        Code = "ProductUnavailable"
	CodeVariantOrAddonUnavailable Code = "VariantOrAddonUnavailable"
	CodeRestaurantUnavailable     Code = "RestaurantUnavailable"
	CodeRestaurantClosed          Code = "RestaurantClosed"
	CodeCrossRestaurantOrder      Code = "CrossRestaurantOrderNotAllowed"
	CodeMultiHubOrder             Code = "MultiHubOrderNotAllowed"
	CodePromoNotFound             Code = "PromoNotFound"
	CodePromoInactive             Code = "PromoInactive"
	CodePromoExpired              Code = "PromoExpired"
	CodePromoNotApplicableToUser  Code = "PromoNotApplicableToUser"
	CodePromoPlatformMismatch     Code = "PromoPlatformMismatch"
	CodePromoUsageExceeded        Code = "PromoUsageExceeded"
	CodePromoNotApplicableToItems Code = "PromoNotApplicableToItems"
	CodePromoMinimumOrderNotMet   Code = "PromoMinimumOrderNotMet"
	CodeAreaNotServiced           Code = "AreaNotServiced"
	CodeOrderValueExceeded        Code = "OrderValueExceeded"
	CodeNotFound                  Code = "NotFound"
	CodeConflict                  Code = "Conflict"
	CodeInternal                  Code = "InternalError"
)

// Error is a classified failure carrying the status it maps to at the transport boundary.
type Error struct {
	Code    Code
	Status  int
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Is matches any *Error with the same code, so errors.Is(err, apperror.PromoExpired(""))
// style checks work regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newf(code Code, status int, format string, args ...any) *Error {
	return &Error{Code: code, Status: status, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newf(CodeValidation, http.StatusBadRequest, format, args...)
}

func ProductUnavailable(format string, args ...any) *Error {
	return newf(CodeProductUnavailable, http.StatusBadRequest, format, args...)
}

// ProductNotFound is the 404 flavour of ProductUnavailable, raised when a requested id
// does not resolve to any catalog record.
func ProductNotFound(format string, args ...any) *Error {
	return newf(CodeProductUnavailable, http.StatusNotFound, format, args...)
}

func VariantOrAddonUnavailable(format string, args ...any) *Error {
	return newf(CodeVariantOrAddonUnavailable, http.StatusBadRequest, format, args...)
}

func RestaurantUnavailable(format string, args ...any) *Error {
	return newf(CodeRestaurantUnavailable, http.StatusBadRequest, format, args...)
}

func RestaurantClosed(format string, args ...any) *Error {
	return newf(CodeRestaurantClosed, http.StatusBadRequest, format, args...)
}

func CrossRestaurantOrder(format string, args ...any) *Error {
	return newf(CodeCrossRestaurantOrder, http.StatusBadRequest, format, args...)
}

func MultiHubOrder(format string, args ...any) *Error {
	return newf(CodeMultiHubOrder, http.StatusBadRequest, format, args...)
}

func PromoNotFound(format string, args ...any) *Error {
	return newf(CodePromoNotFound, http.StatusNotFound, format, args...)
}

func PromoInactive(format string, args ...any) *Error {
	return newf(CodePromoInactive, http.StatusBadRequest, format, args...)
}

func PromoExpired(format string, args ...any) *Error {
	return newf(CodePromoExpired, http.StatusBadRequest, format, args...)
}

func PromoNotApplicableToUser(format string, args ...any) *Error {
	return newf(CodePromoNotApplicableToUser, http.StatusBadRequest, format, args...)
}

func PromoPlatformMismatch(format string, args ...any) *Error {
	return newf(CodePromoPlatformMismatch, http.StatusBadRequest, format, args...)
}

func PromoUsageExceeded(format string, args ...any) *Error {
	return newf(CodePromoUsageExceeded, http.StatusBadRequest, format, args...)
}

func PromoNotApplicableToItems(format string, args ...any) *Error {
	return newf(CodePromoNotApplicableToItems, http.StatusBadRequest, format, args...)
}

func PromoMinimumOrderNotMet(format string, args ...any) *Error {
	return newf(CodePromoMinimumOrderNotMet, http.StatusBadRequest, format, args...)
}

func AreaNotServiced(format string, args ...any) *Error {
	return newf(CodeAreaNotServiced, http.StatusBadRequest, format, args...)
}

func OrderValueExceeded(format string, args ...any) *Error {
	return newf(CodeOrderValueExceeded, http.StatusBadRequest, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(CodeNotFound, http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(CodeConflict, http.StatusConflict, format, args...)
}

// Payload is the body written for a failed request.
type Payload struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Translate maps any error to a status and payload. Unclassified errors degrade to a
// generic 500 without leaking their text.
func Translate(err error) (int, Payload) {
	var e *Error
	if errors.As(err, &e) {
		return e.Status, Payload{Code: e.Code, Message: e.Message}
	}
	return http.StatusInternalServerError, Payload{Code: CodeInternal, Message: "internal server error"}
}

// HasCode reports whether err is a classified error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
