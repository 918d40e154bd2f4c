// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"unicode/utf8"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// Processor splits document content into fixed-size, non-overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size in characters.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	return Split(doc.ID, doc.Content, p.chunkSize), nil
}

// Split cuts text every size characters. Boundaries always fall between
// runes, so multi-byte characters are never split. Empty text yields no
// chunks. Offsets are byte offsets into text.
func Split(docID, text string, size int) []domain.Chunk {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	chunks := make([]domain.Chunk, 0, utf8.RuneCountInString(text)/size+1)
	start, runes := 0, 0
	for i := range text {
		if runes == size {
			chunks = append(chunks, newChunk(docID, text, len(chunks), start, i))
			start, runes = i, 0
		}
		runes++
	}
	return append(chunks, newChunk(docID, text, len(chunks), start, len(text)))
}

func newChunk(docID, text string, index, start, end int) domain.Chunk {
	return domain.Chunk{
		Index:       index,
		DocumentID:  docID,
		Content:     text[start:end],
		StartOffset: start,
		EndOffset:   end,
	}
}
