package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter signals a request parameter that fails shape
	// validation (bad range, unknown field, malformed value).
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNotFound signals a missing entry.
	ErrNotFound = errors.New("not found")
	// ErrUpstream signals a search engine failure (unreachable host,
	// malformed engine response).
	ErrUpstream = errors.New("search engine failure")

	// ErrDeepPaging signals a page*perPage product beyond the engine
	// paging window. Distinct from ErrInvalidParameter: the parameters
	// are well-formed, the request violates a business rule.
	ErrDeepPaging = errors.New("deep paging limit exceeded")
)

// DeepPagingError wraps ErrDeepPaging with the offending product so the
// client can self-correct.
type DeepPagingError struct {
	Page    int
	PerPage int
	Limit   int
}

func (e *DeepPagingError) Error() string {
	return fmt.Sprintf(
		"deep paging limit exceeded: page (%d) * perPage (%d) = %d > %d. Use the Bulk API for large result sets.",
		e.Page, e.PerPage, e.Page*e.PerPage, e.Limit,
	)
}

func (e *DeepPagingError) Unwrap() error { return ErrDeepPaging }

// NewDeepPaging creates a deep paging violation error.
func NewDeepPaging(page, perPage, limit int) error {
	return &DeepPagingError{Page: page, PerPage: perPage, Limit: limit}
}
