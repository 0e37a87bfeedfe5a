// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/gene-annotator/internal/enrichment"
	"github.com/pdiddy/gene-annotator/internal/httputil"
)

// Category is the normalized failure taxonomy shared by all providers.
type Category string

const (
	// CategoryNotFound means the provider answered but knows nothing about
	// the identifier. It is informational, not a failure.
	CategoryNotFound Category = "not_found"

	// CategoryUnavailable covers transport errors, 429 and 5xx after the
	// retry budget, and any other unexpected HTTP status.
	CategoryUnavailable Category = "provider_unavailable"

	// CategoryTimeout means the attempt or the whole aggregation ran out of time.
	CategoryTimeout Category = "timeout"

	// CategoryMalformed means the response could not be decoded into the
	// expected shape. The merger treats it like CategoryUnavailable.
	CategoryMalformed Category = "malformed_response"
)

// Error is a categorized provider failure.
type Error struct {
	Category Category
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Provider, e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Provider, e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(category Category, provider, message string, err error) *Error {
	return &Error{Category: category, Provider: provider, Message: message, Err: err}
}

// CategoryOf derives the taxonomy category of err. Uncategorized errors are
// classified by cause: deadlines as timeouts, undecodable enrichment output
// as malformed, anything else as unavailable.
func CategoryOf(err error) Category {
	var pe *Error
	switch {
	case errors.As(err, &pe):
		return pe.Category
	case errors.Is(err, context.Canceled), httputil.IsTimeout(err):
		return CategoryTimeout
	case errors.Is(err, enrichment.ErrMalformed):
		return CategoryMalformed
	default:
		return CategoryUnavailable
	}
}

// IsUnavailable reports whether err means the provider's data could not be
// obtained: unavailable, timed out, or malformed.
func IsUnavailable(err error) bool {
	return err != nil && CategoryOf(err) != CategoryNotFound
}
