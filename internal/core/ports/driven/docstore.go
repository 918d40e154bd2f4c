package driven

import (
	"context"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// DocumentStore owns ingested documents, their chunks and the search index.
// The index is updated in the same critical section as every mutation.
type DocumentStore interface {
	// SaveDocument stores a document and its chunks, assigning doc.ID.
	// A document from an already stored SourcePath replaces it and keeps its ID.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document in index order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents ordered by ID.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Search returns chunk indices whose text contains query, case-insensitively.
	Search(ctx context.Context, query string) (domain.SearchResults, error)

	// Stats returns document and chunk counts.
	Stats(ctx context.Context) (documents, chunks int, err error)
}
