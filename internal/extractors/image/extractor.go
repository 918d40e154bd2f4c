// Package image extracts text from images with an OCR engine.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"strings"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// ErrOCRNotFound indicates the OCR engine is not installed.
var ErrOCRNotFound = errors.New("OCR engine not found in PATH")

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor runs OCR over images.
type Extractor struct {
	runner  driven.CommandRunner
	command string
}

// New creates an image extractor that runs command (normally tesseract).
func New(runner driven.CommandRunner, command string) *Extractor {
	return &Extractor{runner: runner, command: command}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "image"
}

// Extract decodes the image header for metadata and runs OCR. An image
// without text yields empty text, not an error. A missing OCR engine fails
// with ExtractionError(ocrUnavailable) carrying install instructions.
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Extraction, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	cfg, format, err := stdimage.DecodeConfig(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, &domain.ExtractionError{Kind: domain.ExtractionCorrupt, Path: raw.Path, Err: err}
	}
	meta := map[string]any{
		"width":      cfg.Width,
		"height":     cfg.Height,
		"color_mode": colorMode(cfg.ColorModel),
		"format":     format,
	}

	bin, err := e.lookPath()
	if err != nil {
		return nil, &domain.ExtractionError{
			Kind: domain.ExtractionOCRUnavailable,
			Path: raw.Path,
			Hint: InstallInstructions(),
			Err:  err,
		}
	}

	text, err := e.ocr(ctx, bin, format, raw.Content)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.ExtractionError{Kind: domain.ExtractionCorrupt, Path: raw.Path, Err: err}
	}
	meta["ocr_engine"] = e.command

	return &domain.Extraction{Text: text, Metadata: meta}, nil
}

// InstallInstructions returns platform-specific installation guidance.
func InstallInstructions() string {
	return `Install the tesseract OCR engine to extract text from images:

  macOS:         brew install tesseract
  Ubuntu/Debian: sudo apt install tesseract-ocr
  Fedora/RHEL:   sudo dnf install tesseract
  Windows:       https://github.com/UB-Mannheim/tesseract/wiki`
}

func (e *Extractor) lookPath() (string, error) {
	if e.runner == nil || e.command == "" {
		return "", ErrOCRNotFound
	}
	bin, err := e.runner.LookPath(e.command)
	if err != nil {
		return "", fmt.Errorf("%s: %w", e.command, ErrOCRNotFound)
	}
	return bin, nil
}

func (e *Extractor) ocr(ctx context.Context, bin, format string, content []byte) (string, error) {
	f, err := os.CreateTemp("", "adam-ocr-*."+format)
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(content); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	out, err := e.runner.Run(ctx, bin, f.Name(), "stdout")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// colorMode names a color model the way imaging tools report it.
func colorMode(m color.Model) string {
	switch m {
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.CMYKModel:
		return "CMYK"
	case color.YCbCrModel, color.NYCbCrAModel:
		return "RGB"
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model:
		return "RGBA"
	case color.AlphaModel, color.Alpha16Model:
		return "A"
	}
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	return "unknown"
}
