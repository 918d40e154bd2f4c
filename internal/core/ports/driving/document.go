package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// DocumentService ingests files and answers queries over ingested documents.
type DocumentService interface {
	// Ingest runs classify, extract, chunk and store for one file.
	// Failures are always *domain.IngestionFailure.
	Ingest(ctx context.Context, path string) (*domain.Document, error)

	// IngestDirectory ingests every regular file under dir, continuing past
	// failures. The report is returned even when ctx is cancelled part way.
	IngestDirectory(ctx context.Context, dir string, opts IngestOptions) (*domain.IngestionReport, error)

	// GetMetadata returns the metadata view of a document.
	GetMetadata(ctx context.Context, id string) (*domain.DocumentMetadata, error)

	// GetChunks returns a document's chunks in order.
	GetChunks(ctx context.Context, id string) ([]domain.Chunk, error)

	// GetChunk returns a single chunk by index.
	GetChunk(ctx context.Context, id string, index int) (*domain.Chunk, error)

	// Search finds chunks containing query, case-insensitively.
	Search(ctx context.Context, query string) (domain.SearchResults, error)

	// ResolveMention returns the full text of a document for @id expansion.
	ResolveMention(ctx context.Context, id string) (string, error)

	// List returns all documents ordered by ID.
	List(ctx context.Context) ([]domain.Document, error)

	// Remove deletes a document and its chunks.
	Remove(ctx context.Context, id string) error

	// Stats returns document and chunk counts.
	Stats(ctx context.Context) (domain.StoreStats, error)
}

// IngestOptions configures IngestDirectory.
type IngestOptions struct {
	// Recursive descends into subdirectories.
	Recursive bool

	// FileTimeout abandons a single file after this long. Zero disables it.
	FileTimeout time.Duration
}
