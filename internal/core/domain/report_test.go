package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestionReport_View(t *testing.T) {
	report := &IngestionReport{
		Directory: "/docs",
		Outcomes: []IngestionOutcome{
			{Path: "/docs/a.txt", Document: &Document{ID: "a.txt"}},
			{Path: "/docs/scan.png", Failure: &IngestionFailure{
				Path:  "/docs/scan.png",
				Stage: StageExtract,
				Err: &ExtractionError{
					Kind: ExtractionOCRUnavailable,
					Path: "/docs/scan.png",
					Hint: "install tesseract",
				},
			}},
			{Path: "/docs/gone.txt", Failure: &IngestionFailure{
				Path:  "/docs/gone.txt",
				Stage: StageRead,
				Err:   errors.New("permission denied"),
			}},
			{Path: "/docs/b.md", Document: &Document{ID: "b.md"}},
		},
	}

	v := report.View()

	assert.Equal(t, "/docs", v.Directory)
	assert.Equal(t, 2, v.Succeeded)
	assert.Equal(t, 2, v.Failed)
	assert.Equal(t, []string{"a.txt", "b.md"}, v.Documents)
	require.Len(t, v.Failures, 2)
	assert.Equal(t, StageExtract, v.Failures[0].Stage)
	assert.Equal(t, "install tesseract", v.Failures[0].Hint)
	assert.Contains(t, v.Failures[0].Message, "scan.png")
	assert.Empty(t, v.Failures[1].Hint)
	assert.Len(t, report.Failures(), 2)
}

func TestIngestionReport_View_Empty(t *testing.T) {
	v := (&IngestionReport{Directory: "/empty"}).View()

	assert.NotNil(t, v.Documents)
	assert.Empty(t, v.Documents)
	assert.Nil(t, v.Failures)
}
