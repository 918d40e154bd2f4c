package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// The search index is rebuilt for a document inside the same lock that
// saves or deletes it, so readers never see a stale index.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	byPath    map[string]string
	// index holds the lowercased text of every chunk, by document ID.
	index map[string][]string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		byPath:    make(map[string]string),
		index:     make(map[string][]string),
	}
}

// SaveDocument stores a document and its chunks and assigns doc.ID.
//
// A document whose SourcePath is already stored replaces the old one and
// keeps its ID. Otherwise the ID is doc.ID when set, else doc.Filename; if
// that is taken a numeric suffix is added before the extension
// (report.pdf, report-2.pdf, report-3.pdf).
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byPath[doc.SourcePath]
	if !ok || doc.SourcePath == "" {
		base := doc.ID
		if base == "" {
			base = doc.Filename
		}
		if base == "" {
			return fmt.Errorf("save document: no id or filename: %w", domain.ErrInvalidInput)
		}
		id = s.allocateID(base)
	}

	doc.ID = id
	chunks := make([]domain.Chunk, len(doc.Chunks))
	lowered := make([]string, len(doc.Chunks))
	for i, c := range doc.Chunks {
		c.DocumentID = id
		chunks[i] = c
		lowered[i] = strings.ToLower(c.Content)
	}
	doc.Chunks = chunks

	stored := *doc
	stored.Chunks = append([]domain.Chunk(nil), chunks...)
	stored.Metadata = copyMetadata(doc.Metadata)
	s.documents[id] = stored
	s.index[id] = lowered
	if doc.SourcePath != "" {
		s.byPath[doc.SourcePath] = id
	}
	return nil
}

// allocateID returns base or the first free suffixed variant of it.
// Callers must hold the write lock.
func (s *DocumentStore) allocateID(base string) string {
	if _, taken := s.documents[base]; !taken {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem, ext = base, ""
	}
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s-%d%s", stem, n, ext)
		if _, taken := s.documents[id]; !taken {
			return id
		}
	}
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.NotFoundError("document", id)
	}
	doc.Chunks = append([]domain.Chunk(nil), doc.Chunks...)
	doc.Metadata = copyMetadata(doc.Metadata)
	return &doc, nil
}

// GetChunks retrieves all chunks for a document in index order.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return nil, domain.NotFoundError("document", documentID)
	}
	return append([]domain.Chunk(nil), doc.Chunks...), nil
}

// DeleteDocument removes a document, its chunks and its index entries.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.NotFoundError("document", id)
	}
	delete(s.documents, id)
	delete(s.index, id)
	if s.byPath[doc.SourcePath] == id {
		delete(s.byPath, doc.SourcePath)
	}
	return nil
}

// ListDocuments returns all documents ordered by ID.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for _, id := range s.sortedIDs() {
		result = append(result, s.documents[id])
	}
	return result, nil
}

// Search returns, for every document with a chunk containing query
// case-insensitively, the matching chunk indices. Results are ordered by
// document ID, and indices ascend within each document.
func (s *DocumentStore) Search(_ context.Context, query string) (domain.SearchResults, error) {
	if query == "" {
		return nil, fmt.Errorf("search: empty query: %w", domain.ErrInvalidInput)
	}
	needle := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()
	results := domain.SearchResults{}
	for _, id := range s.sortedIDs() {
		var hits []int
		for i, text := range s.index[id] {
			if strings.Contains(text, needle) {
				hits = append(hits, i)
			}
		}
		if len(hits) > 0 {
			results = append(results, domain.SearchHit{DocumentID: id, ChunkIndices: hits})
		}
	}
	return results, nil
}

// Stats returns document and chunk counts.
func (s *DocumentStore) Stats(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := 0
	for _, doc := range s.documents {
		chunks += len(doc.Chunks)
	}
	return len(s.documents), chunks, nil
}

// sortedIDs returns document IDs in ascending order. Callers must hold a lock.
func (s *DocumentStore) sortedIDs() []string {
	ids := make([]string, 0, len(s.documents))
	for id := range s.documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
