package bulk

import (
	"context"

	"github.com/genomebank/searchgw/internal/domain/document"
)

// Getter retrieves documents by identifier in one round trip.
type Getter interface {
	MultiGet(ctx context.Context, index string, ids []string) (map[string]document.Raw, error)
}
