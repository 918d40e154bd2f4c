package driven

import (
	"context"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// CandidateStore holds project candidates awaiting confirmation.
type CandidateStore interface {
	// Save queues a candidate. Returns false when the path is already
	// pending or was resolved earlier in the session.
	Save(ctx context.Context, c domain.ProjectCandidate) (bool, error)

	// Get retrieves a pending candidate by path.
	Get(ctx context.Context, path string) (*domain.ProjectCandidate, error)

	// Resolve removes a pending candidate, recording its final state.
	Resolve(ctx context.Context, path string, state domain.CandidateState) (*domain.ProjectCandidate, error)

	// Known reports whether path is pending or already resolved.
	Known(ctx context.Context, path string) bool

	// List returns pending candidates ordered by path.
	List(ctx context.Context) ([]domain.ProjectCandidate, error)
}
