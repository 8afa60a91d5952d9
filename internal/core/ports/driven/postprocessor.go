package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// PostProcessor cleans extracted page text before it is chunked.
// PostProcessors are chained in a pipeline (e.g., control characters, hyphenation, whitespace).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process returns the page with its text rewritten.
	Process(ctx context.Context, page domain.PageContent) (domain.PageContent, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the page through all processors in order.
	Process(ctx context.Context, page domain.PageContent) (domain.PageContent, error)
}
