// Package apperr defines the error kinds surfaced by the identity and
// entitlement core. Every error returned to a caller carries a machine-readable
// Kind and a human-readable detail.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindMalformedInput      Kind = "MalformedInput"
	KindInvalidSignature    Kind = "InvalidSignature"
	KindUnauthorized        Kind = "Unauthorized"
	KindNotFound            Kind = "NotFound"
	KindForbidden           Kind = "Forbidden"
	KindInvalidTier         Kind = "InvalidTier"
	KindQuotaExceeded       Kind = "QuotaExceeded"
	KindConflict            Kind = "Conflict"
	KindUpstreamUnavailable Kind = "UpstreamUnavailable"
	KindTimedOut            Kind = "TimedOut"
	KindRateLimited         Kind = "RateLimited"
	KindFailed              Kind = "Failed"
	KindInternal            Kind = "Internal"
)

// HTTPStatus maps a kind to the status code the API answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindMalformedInput, KindInvalidTier:
		return http.StatusBadRequest
	case KindInvalidSignature, KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindQuotaExceeded:
		return http.StatusRequestEntityTooLarge
	case KindConflict:
		return http.StatusConflict
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindTimedOut:
		return http.StatusGatewayTimeout
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may repeat the same request later.
func (k Kind) Retryable() bool {
	return k == KindUpstreamUnavailable || k == KindTimedOut || k == KindRateLimited
}

type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.TimedOut(""))
// style comparisons work regardless of detail.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Wrap(err error, kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// DetailOf returns the human-readable detail of err.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return err.Error()
}

func MalformedInput(format string, args ...any) *Error {
	return New(KindMalformedInput, fmt.Sprintf(format, args...))
}

func InvalidSignature(detail string) *Error {
	return New(KindInvalidSignature, detail)
}

func Unauthorized(detail string) *Error {
	return New(KindUnauthorized, detail)
}

func NotFound(resource string) *Error {
	return New(KindNotFound, resource+" not found")
}

func Forbidden(detail string) *Error {
	return New(KindForbidden, detail)
}

func InvalidTier(tier string) *Error {
	return New(KindInvalidTier, fmt.Sprintf("tier %q cannot be subscribed to", tier))
}

func Conflict(detail string) *Error {
	return New(KindConflict, detail)
}

func UpstreamUnavailable(service string, err error) *Error {
	return Wrap(err, KindUpstreamUnavailable, service+" is unavailable")
}

func TimedOut(detail string) *Error {
	return New(KindTimedOut, detail)
}

func RateLimited(detail string) *Error {
	return New(KindRateLimited, detail)
}

func Failed(reason string) *Error {
	return New(KindFailed, reason)
}

func Internal(detail string, err error) *Error {
	return Wrap(err, KindInternal, detail)
}

func QuotaExceeded(detail string) *Error {
	return New(KindQuotaExceeded, detail)
}
