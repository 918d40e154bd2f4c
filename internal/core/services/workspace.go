package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
)

// Ensure Workspace implements the interface.
var _ driving.WorkspaceService = (*Workspace)(nil)

const (
	// maxListedFiles bounds ListFiles results.
	maxListedFiles = 5000

	// maxSearchBytes skips larger files in SearchFiles.
	maxSearchBytes = 4 << 20
)

// Workspace tracks the working directory used to resolve relative paths and
// answers read-only questions about the files below it. Hidden files and
// directories are skipped.
type Workspace struct {
	classifier driven.Classifier

	mu  sync.RWMutex
	dir string
}

// NewWorkspace creates a workspace rooted at dir.
func NewWorkspace(classifier driven.Classifier, dir string) *Workspace {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Workspace{classifier: classifier, dir: dir}
}

// Dir returns the current working directory.
func (w *Workspace) Dir() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dir
}

// SetDir changes the working directory. Relative paths resolve against the
// current one.
func (w *Workspace) SetDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", &domain.ValidationError{Tool: "set_working_directory", Field: "directory", Reason: "must not be empty"}
	}
	path, err := filepath.Abs(resolvePath(w.Dir(), dir))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", domain.NotFoundError("directory", dir)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", &domain.ValidationError{Tool: "set_working_directory", Field: "directory", Reason: "is not a directory"}
	}

	w.mu.Lock()
	w.dir = path
	w.mu.Unlock()
	return path, nil
}

// ListFiles returns the sorted relative paths of files whose name matches
// pattern. A pattern containing a separator is matched against the whole
// relative path instead. At most maxListedFiles paths are returned.
func (w *Workspace) ListFiles(ctx context.Context, pattern string) ([]string, error) {
	files := []string{}
	err := w.walk(ctx, "list_files", pattern, func(rel, _ string) error {
		if len(files) >= maxListedFiles {
			return fs.SkipAll
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// FileInfo describes path, resolved against the working directory.
func (w *Workspace) FileInfo(path string) (*domain.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &domain.ValidationError{Tool: "get_file_info", Field: "file", Reason: "must not be empty"}
	}
	info, err := os.Stat(resolvePath(w.Dir(), path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFoundError("file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	out := &domain.FileInfo{
		Path:        path,
		Size:        info.Size(),
		ModifiedAt:  info.ModTime(),
		IsFile:      info.Mode().IsRegular(),
		IsDirectory: info.IsDir(),
	}
	if out.IsFile && w.classifier != nil {
		out.MimeClass = w.classifier.Classify(info.Name(), nil)
	}
	return out, nil
}

// SearchFiles returns every UTF-8 text file matching filePattern that
// contains the regular expression pattern, ordered by path.
func (w *Workspace) SearchFiles(ctx context.Context, pattern, filePattern string, caseSensitive bool) ([]domain.FileMatch, error) {
	if pattern == "" {
		return nil, &domain.ValidationError{Tool: "search_in_files", Field: "pattern", Reason: "must not be empty"}
	}
	expr := pattern
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &domain.ValidationError{Tool: "search_in_files", Field: "pattern", Reason: err.Error()}
	}

	matches := []domain.FileMatch{}
	err = w.walk(ctx, "search_in_files", filePattern, func(rel, full string) error {
		if m, ok := searchFile(re, full); ok {
			m.File = rel
			matches = append(matches, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].File < matches[j].File })
	return matches, nil
}

// walk calls fn for every non-hidden regular file under the working
// directory that matches pattern ("*" when empty).
func (w *Workspace) walk(ctx context.Context, tool, pattern string, fn func(rel, full string) error) error {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return &domain.ValidationError{Tool: tool, Field: "pattern", Reason: err.Error()}
	}
	byPath := strings.ContainsRune(pattern, '/') || strings.ContainsRune(pattern, filepath.Separator)

	root := w.Dir()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path != root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		subject := d.Name()
		if byPath {
			subject = filepath.ToSlash(rel)
		}
		if ok, _ := filepath.Match(pattern, subject); !ok {
			return nil
		}
		return fn(rel, path)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NotFoundError("directory", root)
	}
	return err
}

// searchFile reports the match count and lines of re in one file.
func searchFile(re *regexp.Regexp, path string) (domain.FileMatch, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxSearchBytes {
		return domain.FileMatch{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil || !utf8.Valid(data) {
		return domain.FileMatch{}, false
	}

	locs := re.FindAllIndex(data, -1)
	if len(locs) == 0 {
		return domain.FileMatch{}, false
	}

	m := domain.FileMatch{Matches: len(locs), Lines: make([]int, len(locs))}
	line, last := 1, 0
	for i, loc := range locs {
		line += bytes.Count(data[last:loc[0]], []byte{'\n'})
		last = loc[0]
		m.Lines[i] = line
	}
	return m, true
}
