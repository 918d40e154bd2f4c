package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
)

// mockDispatcher records calls and answers with a fixed result.
type mockDispatcher struct {
	mu     sync.Mutex
	calls  []domain.ToolCall
	result domain.ToolResult
}

func (m *mockDispatcher) Specs() []domain.ToolSpec {
	specs := make([]domain.ToolSpec, 0, len(domain.AllTools()))
	for _, name := range domain.AllTools() {
		specs = append(specs, domain.ToolSpec{Name: name, Description: string(name) + " tool"})
	}
	return specs
}

func (m *mockDispatcher) Dispatch(_ context.Context, call domain.ToolCall) domain.ToolResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	result := m.result
	result.Name = call.Name
	return result
}

func (m *mockDispatcher) lastCall() domain.ToolCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	content   map[string]string
	err       error
}

var _ driving.DocumentService = (*mockDocumentService)(nil)

func (m *mockDocumentService) Ingest(_ context.Context, _ string) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) IngestDirectory(
	_ context.Context,
	_ string,
	_ driving.IngestOptions,
) (*domain.IngestionReport, error) {
	return nil, m.err
}

func (m *mockDocumentService) GetMetadata(_ context.Context, id string) (*domain.DocumentMetadata, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.documents {
		if m.documents[i].ID == id {
			meta := domain.MetadataOf(&m.documents[i])
			return &meta, nil
		}
	}
	return nil, domain.NotFoundError("document", id)
}

func (m *mockDocumentService) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockDocumentService) GetChunk(_ context.Context, _ string, _ int) (*domain.Chunk, error) {
	return nil, m.err
}

func (m *mockDocumentService) Search(_ context.Context, _ string) (domain.SearchResults, error) {
	return nil, m.err
}

func (m *mockDocumentService) ResolveMention(_ context.Context, id string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	content, ok := m.content[id]
	if !ok {
		return "", domain.NotFoundError("document", id)
	}
	return content, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Stats(_ context.Context) (domain.StoreStats, error) {
	return domain.StoreStats{Documents: len(m.documents)}, m.err
}

// mockWorkspace records the directory and answers with fixed values.
type mockWorkspace struct {
	dir     string
	files   []string
	info    *domain.FileInfo
	matches []domain.FileMatch
	err     error

	lastPattern string
}

var _ driving.WorkspaceService = (*mockWorkspace)(nil)

func (m *mockWorkspace) Dir() string { return m.dir }

func (m *mockWorkspace) SetDir(dir string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.dir = "/work/" + dir
	return m.dir, nil
}

func (m *mockWorkspace) ListFiles(_ context.Context, pattern string) ([]string, error) {
	m.lastPattern = pattern
	return m.files, m.err
}

func (m *mockWorkspace) FileInfo(path string) (*domain.FileInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.info == nil {
		return nil, domain.NotFoundError("file", path)
	}
	return m.info, nil
}

func (m *mockWorkspace) SearchFiles(_ context.Context, pattern, _ string, _ bool) ([]domain.FileMatch, error) {
	m.lastPattern = pattern
	return m.matches, m.err
}

// mapPromptStore serves prompts from a map.
type mapPromptStore map[string]string

func (m mapPromptStore) Load(name string) (string, error) {
	text, ok := m[name]
	if !ok {
		return "", domain.NotFoundError("prompt", name)
	}
	return text, nil
}

func (m mapPromptStore) Reload() {}
