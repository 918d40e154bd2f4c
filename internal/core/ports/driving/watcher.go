package driving

import (
	"context"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// FolderWatcher discovers project folders under watched roots and
// proposes them for ingestion.
type FolderWatcher interface {
	// Start begins periodic scanning. Blocks until ctx is cancelled.
	Start(ctx context.Context) error

	// Stop stops scanning and waits for in-flight scans.
	Stop() error

	// ScanNow scans every root once and returns newly found candidates.
	ScanNow(ctx context.Context) ([]domain.ProjectCandidate, error)

	// Pending returns candidates awaiting confirmation, ordered by path.
	Pending() []domain.ProjectCandidate

	// Resolve accepts or rejects a pending candidate. Accepting ingests the
	// candidate folder and returns the report.
	Resolve(ctx context.Context, path string, accept bool) (*domain.IngestionReport, error)

	// RootStates returns the scan state of every root.
	RootStates() map[string]domain.RootState
}
