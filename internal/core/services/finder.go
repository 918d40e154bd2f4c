package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// ProjectFinder locates the project folder that owns a marker file by
// walking up from a start directory.
type ProjectFinder struct {
	classifier driven.Classifier
	workDir    string
}

// NewProjectFinder creates a finder. Relative start directories resolve
// against workDir.
func NewProjectFinder(classifier driven.Classifier, workDir string) *ProjectFinder {
	return &ProjectFinder{classifier: classifier, workDir: workDir}
}

// Find returns the nearest folder at or above start that contains marker.
// An empty start means the working directory.
func (f *ProjectFinder) Find(marker, start string) (*domain.ProjectLocation, error) {
	if marker == "" || strings.ContainsAny(marker, `/\`) || marker == "." || marker == ".." {
		return nil, &domain.ValidationError{
			Tool:   string(domain.ToolFind),
			Field:  "filename",
			Reason: "must be a plain file name",
		}
	}

	dir, err := f.resolve(start)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Lstat(filepath.Join(dir, marker)); err == nil {
			return &domain.ProjectLocation{
				Path:           dir,
				Marker:         marker,
				SupportedFiles: f.supportedFiles(dir),
			}, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("check %s: %w", dir, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, domain.NotFoundError("project with "+marker, start)
		}
		dir = parent
	}
}

func (f *ProjectFinder) resolve(start string) (string, error) {
	base := f.workDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("working directory: %w", err)
		}
		base = wd
	}
	if start == "" {
		start = base
	} else if !filepath.IsAbs(start) {
		start = filepath.Join(base, start)
	}
	return filepath.Abs(start)
}

// supportedFiles lists the ingestible files directly inside dir.
func (f *ProjectFinder) supportedFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	files := []string{}
	for _, e := range entries {
		if e.IsDir() || isHidden(e.Name()) {
			continue
		}
		if f.classifier.Classify(e.Name(), nil) != domain.MimeClassUnknown {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files
}
