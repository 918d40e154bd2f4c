package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
)

// mockDispatcher records calls and answers with fixed results.
type mockDispatcher struct {
	mu      sync.Mutex
	calls   []domain.ToolCall
	results map[string]domain.ToolResult
}

func newMockDispatcher() *mockDispatcher {
	return &mockDispatcher{results: make(map[string]domain.ToolResult)}
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

	if r, ok := m.results[call.Name]; ok {
		r.CallID = call.ID
		return r
	}
	return domain.ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Status:  domain.ToolStatusOK,
		Payload: map[string]any{"tool": call.Name},
	}
}

func (m *mockDispatcher) recorded() []domain.ToolCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ToolCall(nil), m.calls...)
}

// mockDocuments resolves mentions from a fixed map. Only the methods the
// chat loop calls are implemented.
type mockDocuments struct {
	driving.DocumentService
	content    map[string]string
	resolveErr error
}

func (m *mockDocuments) ResolveMention(_ context.Context, id string) (string, error) {
	if m.resolveErr != nil {
		return "", m.resolveErr
	}
	text, ok := m.content[id]
	if !ok {
		return "", domain.NotFoundError("document", id)
	}
	return text, nil
}

func (m *mockDocuments) Stats(_ context.Context) (domain.StoreStats, error) {
	return domain.StoreStats{Documents: len(m.content)}, nil
}

// mockWatcher serves a fixed pending list.
type mockWatcher struct {
	driving.FolderWatcher
	pending  []domain.ProjectCandidate
	resolved map[string]bool
	report   *domain.IngestionReport
}

func (m *mockWatcher) Pending() []domain.ProjectCandidate {
	return m.pending
}

func (m *mockWatcher) Resolve(_ context.Context, path string, accept bool) (*domain.IngestionReport, error) {
	for i, c := range m.pending {
		if c.Path != path {
			continue
		}
		m.pending = append(m.pending[:i], m.pending[i+1:]...)
		if m.resolved == nil {
			m.resolved = make(map[string]bool)
		}
		m.resolved[path] = accept
		if accept {
			return m.report, nil
		}
		return nil, nil
	}
	return nil, domain.NotFoundError("project candidate", path)
}

// scriptedModel replays responses in order and records every request.
type scriptedModel struct {
	mu        sync.Mutex
	responses []*driven.ChatResponse
	err       error
	requests  []driven.ChatRequest
}

func (m *scriptedModel) Complete(_ context.Context, req driven.ChatRequest) (*driven.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req.Messages = append([]driven.ChatMessage(nil), req.Messages...)
	m.requests = append(m.requests, req)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, errors.New("script exhausted")
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func (m *scriptedModel) ModelName() string {
	return "scripted"
}

// mockPrompts serves fixed prompts.
type mockPrompts struct {
	prompts map[string]string
}

func (m *mockPrompts) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.NotFoundError("prompt", name)
	}
	return p, nil
}

func (m *mockPrompts) Reload() {}
