package utils

import (
	"errors"
	"fmt"
)

// Request-level error taxonomy. Handlers map these to HTTP statuses; the
// workflow layer only ever returns one of them (or a ConversionError).
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidState     = errors.New("invalid state")

	// ErrUpstreamUnavailable marks an optional integration that is absent or
	// misconfigured. Callers degrade to a neutral response unless the whole
	// operation is that integration.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ConversionError wraps any failure inside the order conversion transaction.
// By the time a caller sees it, every write has been rolled back and the
// quotation is still a draft.
type ConversionError struct {
	QuotationId int
	Cause       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("order conversion failed for quotation %d: %v", e.QuotationId, e.Cause)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
