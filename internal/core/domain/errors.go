package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document, chunk or project does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file family no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrToolNotFound indicates an external binary (OCR engine, PDF tool) is missing.
	ErrToolNotFound = errors.New("external tool not found")

	// ErrLLMUnavailable indicates the chat model is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)

// ResourceError names the missing resource behind ErrNotFound.
type ResourceError struct {
	Kind string
	ID   string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.ID, ErrNotFound)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *ResourceError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFoundError returns a *ResourceError for the missing resource.
func NotFoundError(kind, id string) error {
	return &ResourceError{Kind: kind, ID: id}
}

// ExtractionKind classifies extractor failures.
type ExtractionKind string

// Extraction failure kinds.
const (
	// ExtractionCorrupt means the file structure could not be parsed.
	ExtractionCorrupt ExtractionKind = "corrupt"

	// ExtractionOCRUnavailable means the OCR engine binary is missing.
	ExtractionOCRUnavailable ExtractionKind = "ocr_unavailable"

	// ExtractionUnsupported means the file family cannot be extracted.
	ExtractionUnsupported ExtractionKind = "unsupported"

	// ExtractionTimeout means the per-file deadline passed during extraction.
	ExtractionTimeout ExtractionKind = "timeout"
)

// ExtractionError is a per-file extractor failure.
type ExtractionError struct {
	Kind ExtractionKind
	Path string
	// Hint tells the user how to fix the problem, when there is a fix.
	Hint string
	Err  error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extract %s: %s", e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed tool call.
type ValidationError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tool %s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("tool %s: argument %s: %s", e.Tool, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidInput) match validation errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IngestStage names the pipeline step at which ingestion failed.
type IngestStage string

// Ingestion stages.
const (
	StageRead     IngestStage = "read"
	StageClassify IngestStage = "classify"
	StageExtract  IngestStage = "extract"
	StageChunk    IngestStage = "chunk"
	StageStore    IngestStage = "store"
)

// IngestionFailure records why one file could not be ingested.
type IngestionFailure struct {
	Path  string
	Stage IngestStage
	Err   error
}

func (f *IngestionFailure) Error() string {
	return fmt.Sprintf("ingest %s: %s: %v", f.Path, f.Stage, f.Err)
}

func (f *IngestionFailure) Unwrap() error {
	return f.Err
}
