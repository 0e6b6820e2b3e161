// Package page validates pagination parameters and enforces the deep
// paging ceiling.
package page

import (
	"fmt"

	"github.com/genomebank/searchgw/internal/domain"
)

// Pagination limits.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// DeepPagingLimit is the maximum page*perPage product the engine
	// can serve efficiently through offset pagination.
	DeepPagingLimit = 10000
)

// Spec is a validated page/perPage pair.
type Spec struct {
	page    int
	perPage int
}

// New validates pagination parameters. Shape errors (page < 1, perPage
// outside 1-100) are reported before the deep paging rule so clients
// get the most actionable message first.
func New(pageNum, perPage int) (Spec, error) {
	if pageNum < 1 {
		return Spec{}, fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrInvalidParameter, pageNum)
	}
	if perPage < 1 || perPage > MaxPerPage {
		return Spec{}, fmt.Errorf(
			"%w: perPage must be between 1 and %d, got %d", domain.ErrInvalidParameter, MaxPerPage, perPage)
	}
	if pageNum*perPage > DeepPagingLimit {
		return Spec{}, domain.NewDeepPaging(pageNum, perPage, DeepPagingLimit)
	}
	return Spec{page: pageNum, perPage: perPage}, nil
}

// Page returns the 1-based page number.
func (s Spec) Page() int { return s.page }

// PerPage returns the page size.
func (s Spec) PerPage() int { return s.perPage }

// Offset returns the engine result offset.
func (s Spec) Offset() int { return (s.page - 1) * s.perPage }

// Limit returns the engine result window size.
func (s Spec) Limit() int { return s.perPage }
