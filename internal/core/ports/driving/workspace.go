package driving

import (
	"context"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// WorkspaceService gives read-only access to the files under a working
// directory. Relative paths given to the document tools resolve against it.
type WorkspaceService interface {
	// Dir returns the current working directory.
	Dir() string

	// SetDir changes the working directory and returns its absolute path.
	SetDir(dir string) (string, error)

	// ListFiles returns the relative paths of files matching a glob pattern.
	ListFiles(ctx context.Context, pattern string) ([]string, error)

	// FileInfo describes a file or directory.
	FileInfo(path string) (*domain.FileInfo, error)

	// SearchFiles finds a regular expression in text files matching filePattern.
	SearchFiles(ctx context.Context, pattern, filePattern string, caseSensitive bool) ([]domain.FileMatch, error)
}
