package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// Ensure CandidateStore implements the interface.
var _ driven.CandidateStore = (*CandidateStore)(nil)

// CandidateStore is an in-memory implementation of driven.CandidateStore.
// Resolved paths are remembered for the life of the process so a folder
// is proposed at most once per session.
type CandidateStore struct {
	mu       sync.RWMutex
	pending  map[string]domain.ProjectCandidate
	resolved map[string]domain.CandidateState
}

// NewCandidateStore creates a new in-memory candidate store.
func NewCandidateStore() *CandidateStore {
	return &CandidateStore{
		pending:  make(map[string]domain.ProjectCandidate),
		resolved: make(map[string]domain.CandidateState),
	}
}

// Save stores a candidate as pending confirmation. Paths that are already
// pending or resolved are ignored and false is returned.
func (s *CandidateStore) Save(_ context.Context, c domain.ProjectCandidate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[c.Path]; ok {
		return false, nil
	}
	if _, ok := s.resolved[c.Path]; ok {
		return false, nil
	}
	c.State = domain.CandidatePendingConfirmation
	s.pending[c.Path] = c
	return true, nil
}

// Get retrieves a pending candidate by path.
func (s *CandidateStore) Get(_ context.Context, path string) (*domain.ProjectCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.pending[path]
	if !ok {
		return nil, domain.NotFoundError("project candidate", path)
	}
	return &c, nil
}

// Resolve removes a pending candidate and records its final state.
func (s *CandidateStore) Resolve(_ context.Context, path string, state domain.CandidateState) (*domain.ProjectCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.pending[path]
	if !ok {
		return nil, domain.NotFoundError("project candidate", path)
	}
	delete(s.pending, path)
	s.resolved[path] = state
	c.State = state
	return &c, nil
}

// Known reports whether path is pending or was resolved this session.
func (s *CandidateStore) Known(_ context.Context, path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, pending := s.pending[path]
	_, resolved := s.resolved[path]
	return pending || resolved
}

// List returns pending candidates ordered by path.
func (s *CandidateStore) List(_ context.Context) ([]domain.ProjectCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.ProjectCandidate, 0, len(s.pending))
	for _, c := range s.pending {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}
