package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/adam/internal/core/domain"
)

func TestRegistry_For(t *testing.T) {
	r := NewDefaultRegistry(ExecRunner{}, domain.DefaultAppSettings().Extractors)

	tests := []struct {
		class domain.MimeClass
		want  string
	}{
		{domain.MimeClassText, "text"},
		{domain.MimeClassUnknown, "text"},
		{domain.MimeClassPDF, "pdf"},
		{domain.MimeClassDOCX, "docx"},
		{domain.MimeClassImage, "image"},
		{domain.MimeClass("bogus"), "text"},
	}
	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			assert.Equal(t, tt.want, r.For(tt.class).Name())
		})
	}
}

func TestExecRunner(t *testing.T) {
	var r ExecRunner

	_, err := r.LookPath("definitely-not-a-real-binary-adam")
	assert.Error(t, err)

	path, err := r.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	out, err := r.Run(context.Background(), path, "-c", "printf hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	_, err = r.Run(context.Background(), path, "-c", "echo oops >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}
