package entry

import (
	"context"

	"github.com/genomebank/searchgw/internal/domain/document"
)

// Getter retrieves a single document by identifier.
type Getter interface {
	GetSource(ctx context.Context, index, id string) (document.Raw, error)
}
