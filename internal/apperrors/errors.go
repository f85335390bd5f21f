// Package apperrors defines the error taxonomy the quote pipeline speaks.
//
// Every error a caller might branch on carries a Kind (how to react) and a
// stable machine-readable code (what happened). Sentinels compare with
// errors.Is even after WithDetail attaches request-specific context.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping and retry decisions.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation marks a malformed or self-contradictory request.
	KindValidation
	// KindNotFound marks a referenced entity that does not exist.
	KindNotFound
	// KindBusinessRule marks a well-formed request the business cannot
	// serve right now, such as a closed restaurant.
	KindBusinessRule
)

// Error is the pipeline's error value. Instances with the same code are
// considered equal by errors.Is regardless of attached detail.
type Error struct {
	kind Kind
	code string
	msg  string
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{kind: kind, code: code, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Code() string { return e.code }

// Is matches any *Error carrying the same code, so detailed copies still
// satisfy errors.Is against their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == e.code
}

// WithDetail returns a copy with request context appended to the message.
// The original sentinel is never mutated.
func (e *Error) WithDetail(format string, args ...interface{}) *Error {
	return &Error{
		kind: e.kind,
		code: e.code,
		msg:  e.msg + ": " + fmt.Sprintf(format, args...),
	}
}

var (
	ErrInvalidAddress    = newError(KindValidation, "invalid_address", "delivery address is missing or invalid")
	ErrEmptyCart         = newError(KindValidation, "empty_cart", "order must contain at least one line")
	ErrInvalidSupplement = newError(KindValidation, "invalid_supplement", "supplement is not offered for this dish")

	ErrCustomerNotFound   = newError(KindNotFound, "customer_not_found", "customer not found or no longer active")
	ErrDishNotFound       = newError(KindNotFound, "dish_not_found", "one or more dishes are unknown or unavailable")
	ErrRestaurantNotFound = newError(KindNotFound, "restaurant_not_found", "restaurant not found")

	ErrRestaurantClosed     = newError(KindBusinessRule, "restaurant_closed", "restaurant is closed at the requested time")
	ErrMenuMismatch         = newError(KindBusinessRule, "menu_mismatch", "restaurant does not serve all requested dishes")
	ErrNoEligibleRestaurant = newError(KindBusinessRule, "no_eligible_restaurant", "no open restaurant currently serves this combination of dishes")
)

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, msg string) *Error {
	return newError(KindValidation, "invalid_request", fmt.Sprintf("%s: %s", field, msg))
}

// KindOf extracts the Kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// CodeOf extracts the machine-readable code, or "" for untyped errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ""
}
