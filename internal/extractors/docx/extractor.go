// Package docx extracts paragraph text and core properties from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// oleMagic starts legacy binary .doc files.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "docx"
}

// Extract returns paragraph text in document order. Files that are not
// valid OOXML packages fail with ExtractionError(corrupt).
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.Extraction, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	if bytes.HasPrefix(raw.Content, oleMagic) {
		return nil, &domain.ExtractionError{
			Kind: domain.ExtractionUnsupported,
			Path: raw.Path,
			Hint: "legacy binary .doc files are not supported; save the file as .docx",
		}
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, corrupt(raw.Path, err)
	}

	body, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, corrupt(raw.Path, err)
	}
	paragraphs, err := parseDocumentXML(body)
	if err != nil {
		return nil, corrupt(raw.Path, err)
	}

	meta := map[string]any{"paragraph_count": len(paragraphs)}
	if core, err := readPart(reader, "docProps/core.xml"); err == nil {
		addCoreProperties(meta, core)
	}

	return &domain.Extraction{
		Text:     strings.Join(paragraphs, "\n"),
		Metadata: meta,
	}, nil
}

func corrupt(path string, err error) error {
	return &domain.ExtractionError{Kind: domain.ExtractionCorrupt, Path: path, Err: err}
}

var errPartMissing = errors.New("part missing")

func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s: %w", name, errPartMissing)
}

// parseDocumentXML streams word/document.xml and returns one string per
// non-empty paragraph, including paragraphs inside tables.
func parseDocumentXML(content []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if p := strings.TrimSpace(current.String()); p != "" {
					paragraphs = append(paragraphs, p)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title          string `xml:"title"`
	Subject        string `xml:"subject"`
	Creator        string `xml:"creator"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Revision       string `xml:"revision"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
}

func addCoreProperties(meta map[string]any, content []byte) {
	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return
	}
	for key, val := range map[string]string{
		"title":            core.Title,
		"subject":          core.Subject,
		"author":           core.Creator,
		"last_modified_by": core.LastModifiedBy,
		"revision":         core.Revision,
		"created":          core.Created,
		"modified":         core.Modified,
	} {
		if v := strings.TrimSpace(val); v != "" {
			meta[key] = v
		}
	}
}
