package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/adam/internal/core/domain"
)

var (
	pdfMagic = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	pngMagic = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
)

func TestClassify_ExtensionTable(t *testing.T) {
	c := New()
	tests := []struct {
		path string
		want domain.MimeClass
	}{
		{"report.pdf", domain.MimeClassPDF},
		{"REPORT.PDF", domain.MimeClassPDF},
		{"letter.docx", domain.MimeClassDOCX},
		{"legacy.doc", domain.MimeClassDOCX},
		{"scan.png", domain.MimeClassImage},
		{"photo.JPEG", domain.MimeClassImage},
		{"fax.tiff", domain.MimeClassImage},
		{"notes.txt", domain.MimeClassText},
		{"README.md", domain.MimeClassText},
		{"main.py", domain.MimeClassText},
		{"index.html", domain.MimeClassText},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.path, nil))
		})
	}
}

func TestClassify_ExtensionWinsOverSniff(t *testing.T) {
	c := New()
	assert.Equal(t, domain.MimeClassText, c.Classify("notes.txt", pdfMagic))
}

func TestClassify_SniffFallback(t *testing.T) {
	c := New()
	tests := []struct {
		name  string
		path  string
		sniff []byte
		want  domain.MimeClass
	}{
		{"pdf magic with unknown extension", "mystery.xyz", pdfMagic, domain.MimeClassPDF},
		{"png magic without extension", "blob", pngMagic, domain.MimeClassImage},
		{"plain text", "LICENSE", []byte("Permission is hereby granted, free of charge.\n"), domain.MimeClassText},
		{"binary junk", "data.bin", []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x00, 0x10}, domain.MimeClassUnknown},
		{"empty sniff", "empty.xyz", nil, domain.MimeClassUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.path, tt.sniff))
		})
	}
}

func TestMIMEType(t *testing.T) {
	c := New()
	assert.Equal(t, "application/pdf", c.MIMEType("mystery.xyz", pdfMagic))
	assert.Equal(t, "image/png", c.MIMEType("scan.png", pngMagic))
	assert.Equal(t, "application/pdf", c.MIMEType("report.pdf", nil))
	assert.Equal(t, "application/octet-stream", c.MIMEType("noext", nil))
}

func TestSniff(t *testing.T) {
	dir := t.TempDir()

	small := filepath.Join(dir, "small.xyz")
	require.NoError(t, os.WriteFile(small, pdfMagic, 0o600))
	got, err := Sniff(small)
	require.NoError(t, err)
	assert.Equal(t, pdfMagic, got)

	large := filepath.Join(dir, "large.txt")
	require.NoError(t, os.WriteFile(large, make([]byte, SniffLen*2), 0o600))
	got, err = Sniff(large)
	require.NoError(t, err)
	assert.Len(t, got, SniffLen)

	_, err = Sniff(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestExtensionsAndIsSupported(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, Extensions(domain.MimeClassPDF))
	assert.Equal(t, []string{".doc", ".docx"}, New().Extensions(domain.MimeClassDOCX))
	assert.Empty(t, Extensions(domain.MimeClassUnknown))
	assert.True(t, IsSupported("a.MD"))
	assert.False(t, IsSupported("a.xyz"))
}
