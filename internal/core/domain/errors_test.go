package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrToolNotFound", ErrToolNotFound},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("document", "missingdoc")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, `document "missingdoc": not found`, err.Error())

	var res *ResourceError
	wrapped := fmt.Errorf("lookup: %w", err)
	assert.True(t, errors.As(wrapped, &res))
	assert.Equal(t, "document", res.Kind)
	assert.Equal(t, "missingdoc", res.ID)
}

func TestExtractionError(t *testing.T) {
	cause := fmt.Errorf("bad xref")
	err := &ExtractionError{Kind: ExtractionCorrupt, Path: "/tmp/a.pdf", Err: cause}

	assert.Equal(t, "extract /tmp/a.pdf: corrupt: bad xref", err.Error())
	assert.True(t, errors.Is(err, cause))

	var target *ExtractionError
	wrapped := fmt.Errorf("wrap: %w", err)
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, ExtractionCorrupt, target.Kind)
}

func TestExtractionError_NoCause(t *testing.T) {
	err := &ExtractionError{Kind: ExtractionOCRUnavailable, Path: "/tmp/a.png"}
	assert.Equal(t, "extract /tmp/a.png: ocr_unavailable", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Tool: "metadata", Field: "docId", Reason: "required"}
	assert.Equal(t, "tool metadata: argument docId: required", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = &ValidationError{Tool: "nope", Reason: "unknown tool"}
	assert.Equal(t, "tool nope: unknown tool", err.Error())
}

func TestIngestionFailure_WrapsExtractionError(t *testing.T) {
	extractErr := &ExtractionError{Kind: ExtractionCorrupt, Path: "/tmp/a.pdf"}
	failure := &IngestionFailure{Path: "/tmp/a.pdf", Stage: StageExtract, Err: extractErr}

	var target *ExtractionError
	assert.True(t, errors.As(failure, &target))
	assert.Contains(t, failure.Error(), "extract")
}
