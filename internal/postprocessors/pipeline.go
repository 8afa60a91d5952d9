// Package postprocessors provides page text cleaning implementations.
package postprocessors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline chains multiple PostProcessors and runs them in order.
// It implements the PostProcessorPipeline interface.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the page through all processors in order.
// HasText is recomputed from the final text.
func (p *Pipeline) Process(ctx context.Context, page domain.PageContent) (domain.PageContent, error) {
	for _, processor := range p.processors {
		var err error
		page, err = processor.Process(ctx, page)
		if err != nil {
			return page, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}
	page.Metadata.HasText = strings.TrimSpace(page.Text) != ""
	return page, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
