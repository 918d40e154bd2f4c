// Package postprocessors provides document content processing implementations.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
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

// Process runs the document through all processors in order.
// The first processor receives nil chunks and should create them.
// The final chunks must partition doc.Content exactly.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var chunks []domain.Chunk

	for _, processor := range p.processors {
		var err error
		chunks, err = processor.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	if err := CheckPartition(doc, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// CheckPartition verifies that chunks are contiguous, 0-indexed and cover
// doc.Content exactly.
func CheckPartition(doc *domain.Document, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		if doc.Content != "" {
			return fmt.Errorf("document %s: no chunks for %d bytes of content", doc.ID, len(doc.Content))
		}
		return nil
	}
	offset := 0
	for i, c := range chunks {
		if c.Index != i {
			return fmt.Errorf("document %s: chunk %d has index %d", doc.ID, i, c.Index)
		}
		if c.StartOffset != offset || c.EndOffset < c.StartOffset || c.EndOffset > len(doc.Content) {
			return fmt.Errorf("document %s: chunk %d spans [%d,%d), expected start %d", doc.ID, i, c.StartOffset, c.EndOffset, offset)
		}
		if doc.Content[c.StartOffset:c.EndOffset] != c.Content {
			return fmt.Errorf("document %s: chunk %d content does not match its offsets", doc.ID, i)
		}
		offset = c.EndOffset
	}
	if offset != len(doc.Content) {
		return fmt.Errorf("document %s: chunks end at %d of %d bytes", doc.ID, offset, len(doc.Content))
	}
	return nil
}
