// Package classifier decides how a file should be extracted.
//
// Classification never fails: an extension table is consulted first,
// magic-byte sniffing second, and anything left over is MimeClassUnknown,
// which is read as text.
package classifier

import (
	"errors"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// SniffLen is the number of leading bytes read for content sniffing.
const SniffLen = 3072

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Ensure Classifier implements the interface.
var _ driven.Classifier = (*Classifier)(nil)

var extensionTable = map[string]domain.MimeClass{
	".pdf":  domain.MimeClassPDF,
	".docx": domain.MimeClassDOCX,
	".doc":  domain.MimeClassDOCX,

	".png":  domain.MimeClassImage,
	".jpg":  domain.MimeClassImage,
	".jpeg": domain.MimeClassImage,
	".gif":  domain.MimeClassImage,
	".bmp":  domain.MimeClassImage,
	".tiff": domain.MimeClassImage,
	".tif":  domain.MimeClassImage,
	".webp": domain.MimeClassImage,

	".txt":      domain.MimeClassText,
	".md":       domain.MimeClassText,
	".markdown": domain.MimeClassText,
	".rst":      domain.MimeClassText,
	".log":      domain.MimeClassText,
	".csv":      domain.MimeClassText,
	".json":     domain.MimeClassText,
	".yaml":     domain.MimeClassText,
	".yml":      domain.MimeClassText,
	".toml":     domain.MimeClassText,
	".xml":      domain.MimeClassText,
	".ini":      domain.MimeClassText,
	".cfg":      domain.MimeClassText,
	".html":     domain.MimeClassText,
	".htm":      domain.MimeClassText,
	".css":      domain.MimeClassText,
	".py":       domain.MimeClassText,
	".js":       domain.MimeClassText,
	".ts":       domain.MimeClassText,
	".go":       domain.MimeClassText,
	".rs":       domain.MimeClassText,
	".java":     domain.MimeClassText,
	".c":        domain.MimeClassText,
	".h":        domain.MimeClassText,
	".cpp":      domain.MimeClassText,
	".sh":       domain.MimeClassText,
	".sql":      domain.MimeClassText,
}

// Classifier maps files to mime classes.
type Classifier struct{}

// New creates a classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify returns the MimeClass for path, falling back to sniff when the
// extension is not recognised.
func (c *Classifier) Classify(path string, sniff []byte) domain.MimeClass {
	if class, ok := extensionTable[strings.ToLower(filepath.Ext(path))]; ok {
		return class
	}
	if len(sniff) == 0 {
		return domain.MimeClassUnknown
	}
	return classOf(mimetype.Detect(sniff))
}

// MIMEType returns the IANA media type for path. Sniffed content wins over
// the extension because it reflects what the bytes actually are.
func (c *Classifier) MIMEType(path string, sniff []byte) string {
	if len(sniff) > 0 {
		if m := mimetype.Detect(sniff); !m.Is("application/octet-stream") {
			return m.String()
		}
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t
	}
	return "application/octet-stream"
}

// IsSupported reports whether path has a recognised extension.
func IsSupported(path string) bool {
	_, ok := extensionTable[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the recognised extensions for class, sorted.
func Extensions(class domain.MimeClass) []string {
	var exts []string
	for ext, c := range extensionTable {
		if c == class {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Extensions returns the recognised extensions for class, sorted.
func (c *Classifier) Extensions(class domain.MimeClass) []string {
	return Extensions(class)
}

// Sniff reads the leading bytes of path for content detection.
func Sniff(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, SniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// classOf walks the detected type and its ancestors, so that for example
// text/x-python is treated as text.
func classOf(m *mimetype.MIME) domain.MimeClass {
	for ; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/pdf"):
			return domain.MimeClassPDF
		case m.Is(docxMIME), m.Is("application/msword"):
			return domain.MimeClassDOCX
		case strings.HasPrefix(m.String(), "image/"):
			return domain.MimeClassImage
		case strings.HasPrefix(m.String(), "text/"):
			return domain.MimeClassText
		}
	}
	return domain.MimeClassUnknown
}
