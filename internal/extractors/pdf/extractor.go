// Package pdf extracts page-ordered text and document properties from PDFs.
//
// Structure and metadata come from pdfcpu. Text comes from pdftotext when it
// is installed, otherwise from decoding the text operators in each page's
// content stream.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/logger"
)

func init() {
	api.DisableConfigDir()
}

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var pageFile = regexp.MustCompile(`Content_page_(\d+)`)

// Extractor handles PDF documents.
type Extractor struct {
	runner  driven.CommandRunner
	command string
}

// New creates a PDF extractor. runner may be nil, in which case text is
// always decoded from content streams.
func New(runner driven.CommandRunner, command string) *Extractor {
	return &Extractor{runner: runner, command: command}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "pdf"
}

// Available reports whether pdftotext can be used.
func (e *Extractor) Available() bool {
	if e.runner == nil || e.command == "" {
		return false
	}
	_, err := e.runner.LookPath(e.command)
	return err == nil
}

// Extract parses the PDF and returns its text in page order.
// Unparseable files fail with ExtractionError(corrupt).
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Extraction, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	pdfCtx, err := readContext(raw.Content)
	if err != nil {
		return nil, &domain.ExtractionError{Kind: domain.ExtractionCorrupt, Path: raw.Path, Err: err}
	}
	meta := metadataOf(pdfCtx)

	tmp, err := writeTemp(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("pdf temp file: %w", err)
	}
	defer os.Remove(tmp)

	var pages []string
	if e.Available() {
		pages, err = e.runPDFToText(ctx, tmp)
		if err == nil {
			meta["text_source"] = "pdftotext"
		} else {
			logger.Warn("pdftotext failed for %s, decoding content streams: %v", raw.Path, err)
		}
	}
	if pages == nil {
		pages, err = contentStreamPages(tmp, pdfCtx.PageCount)
		if err != nil {
			logger.Warn("content stream extraction failed for %s: %v", raw.Path, err)
			meta["text_error"] = err.Error()
		}
		meta["text_source"] = "content_stream"
	}

	return &domain.Extraction{
		Text:     joinPages(pages),
		Metadata: meta,
	}, nil
}

// InstallInstructions returns platform-specific installation guidance.
func InstallInstructions() string {
	return `pdftotext improves PDF text extraction. Install poppler:

  macOS:         brew install poppler
  Ubuntu/Debian: sudo apt install poppler-utils
  Fedora/RHEL:   sudo dnf install poppler-utils
  Arch:          sudo pacman -S poppler`
}

// readContext parses and validates the PDF. The parser can panic on some
// malformed inputs, which is reported as an error.
func readContext(content []byte) (pdfCtx *model.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			pdfCtx = nil
			err = fmt.Errorf("pdf parser: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err = api.ReadContext(bytes.NewReader(content), conf)
	if err != nil {
		return nil, err
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, err
	}
	return pdfCtx, nil
}

func metadataOf(pdfCtx *model.Context) map[string]any {
	meta := map[string]any{
		"page_count": pdfCtx.PageCount,
		"encrypted":  pdfCtx.Encrypt != nil,
	}
	for key, val := range map[string]string{
		"title":    pdfCtx.Title,
		"author":   pdfCtx.Author,
		"subject":  pdfCtx.Subject,
		"creator":  pdfCtx.Creator,
		"producer": pdfCtx.Producer,
	} {
		if v := strings.TrimSpace(val); v != "" {
			meta[key] = v
		}
	}
	return meta
}

func (e *Extractor) runPDFToText(ctx context.Context, path string) ([]string, error) {
	bin, err := e.runner.LookPath(e.command)
	if err != nil {
		return nil, ErrPDFToolNotFound
	}
	out, err := e.runner.Run(ctx, bin, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, err
	}
	pages := strings.Split(string(out), "\f")
	// pdftotext terminates every page with a form feed.
	if n := len(pages); n > 0 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages, nil
}

func contentStreamPages(path string, pageCount int) ([]string, error) {
	outDir, err := os.MkdirTemp("", "adam-pdf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(path, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, err
	}
	pages := make([]string, pageCount)
	for _, entry := range entries {
		m := pageFile.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if n < 1 || n > pageCount {
			continue
		}
		stream, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		pages[n-1] += contentText(stream)
	}
	return pages, nil
}

func joinPages(pages []string) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

func writeTemp(content []byte) (string, error) {
	f, err := os.CreateTemp("", "adam-*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
