package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// TOCService builds and caches the table of contents of a document.
type TOCService interface {
	// Build derives the table of contents, enhances it and persists the result.
	// A cached result for the same document is returned without rebuilding.
	Build(ctx context.Context, doc *domain.Document, src domain.OutlineSource) (domain.TOCCache, error)

	// Enhance runs AI title enhancement over items not yet processed.
	Enhance(ctx context.Context, items []domain.TOCItem) ([]domain.TOCItem, error)
}
