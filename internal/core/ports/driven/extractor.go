package driven

import (
	"context"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// Extractor turns raw file bytes into text and metadata.
// Failures are returned as *domain.ExtractionError.
type Extractor interface {
	// Name returns the extractor name for logging.
	Name() string

	// Extract reads raw.Content and returns the extracted text.
	Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Extraction, error)
}

// ExtractorRegistry selects the extractor for a mime class.
type ExtractorRegistry interface {
	// For returns the extractor for class. Unknown classes get the text extractor.
	For(class domain.MimeClass) Extractor
}

// Classifier decides the processing strategy for a file.
type Classifier interface {
	// Classify returns the MimeClass for path given its leading bytes. Never fails.
	Classify(path string, sniff []byte) domain.MimeClass

	// MIMEType returns the IANA media type for path given its leading bytes.
	MIMEType(path string, sniff []byte) string

	// Extensions returns the file extensions recognised for class.
	Extensions(class domain.MimeClass) []string
}

// CommandRunner executes external binaries such as tesseract or pdftotext.
type CommandRunner interface {
	// LookPath reports whether name is installed and where.
	LookPath(name string) (string, error)

	// Run executes name with args and returns stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
