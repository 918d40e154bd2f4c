// Package text extracts plain text with confidence-scored encoding detection.
package text

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// MinConfidence is the lowest detector confidence (0-100) accepted
// without flagging the result as low confidence.
const MinConfidence = 50

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Detector guesses the character set of a byte slice.
type Detector interface {
	DetectBest(b []byte) (*chardet.Result, error)
}

// Extractor decodes text files into UTF-8.
type Extractor struct {
	detector Detector
}

// New creates a text extractor backed by chardet.
func New() *Extractor {
	return &Extractor{detector: chardet.NewTextDetector()}
}

// NewWithDetector creates a text extractor with a custom detector.
func NewWithDetector(d Detector) *Extractor {
	return &Extractor{detector: d}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "text"
}

// Extract decodes raw.Content. It never fails for readable bytes. When no
// encoding is detected confidently the best guess (or windows-1252) is used
// and the result is flagged with low_confidence_encoding.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.Extraction, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, enc, confidence, ok := e.decode(raw.Content)
	meta := map[string]any{
		"encoding":            enc,
		"encoding_confidence": confidence,
		"line_count":          countLines(text),
	}
	if !ok {
		meta["low_confidence_encoding"] = true
	}
	if raw.MimeClass == domain.MimeClassUnknown {
		meta["unknown_type"] = true
	}

	return &domain.Extraction{
		Text:     text,
		Encoding: enc,
		Metadata: meta,
	}, nil
}

// decode returns the text, the encoding name, the confidence and whether
// the encoding was confidently identified.
func (e *Extractor) decode(b []byte) (string, string, int, bool) {
	if len(b) == 0 {
		return "", "utf-8", 100, true
	}

	switch {
	case bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}):
		return strings.ToValidUTF8(string(b[3:]), "\uFFFD"), "utf-8-sig", 100, true
	case bytes.HasPrefix(b, []byte{0xFE, 0xFF}):
		if s, err := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), b); err == nil {
			return s, "utf-16be", 100, true
		}
	case bytes.HasPrefix(b, []byte{0xFF, 0xFE}):
		if s, err := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), b); err == nil {
			return s, "utf-16le", 100, true
		}
	}

	if utf8.Valid(b) {
		return string(b), "utf-8", 100, true
	}

	var guess *chardet.Result
	if e.detector != nil {
		if res, err := e.detector.DetectBest(b); err == nil {
			guess = res
		}
	}
	if guess == nil {
		return decodeFallback(b), fallbackEncoding, 0, false
	}

	// A low-confidence guess is still used to decode, only flagged.
	confident := guess.Confidence >= MinConfidence
	if enc := lookup(guess.Charset); enc != nil {
		if s, err := decodeWith(enc, b); err == nil {
			return s, strings.ToLower(guess.Charset), guess.Confidence, confident
		}
	}
	return decodeFallback(b), fallbackEncoding, guess.Confidence, false
}

// fallbackEncoding decodes any byte sequence, so single-byte text keeps its
// accented characters instead of becoming U+FFFD.
const fallbackEncoding = "windows-1252"

func decodeFallback(b []byte) string {
	if s, err := decodeWith(charmap.Windows1252, b); err == nil {
		return s
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// lookup resolves a detector charset name such as "GB-18030" or "ISO-8859-1".
func lookup(charset string) encoding.Encoding {
	if enc, err := htmlindex.Get(charset); err == nil {
		return enc
	}
	if enc, err := htmlindex.Get(strings.ReplaceAll(charset, "-", "")); err == nil {
		return enc
	}
	return nil
}

func decodeWith(enc encoding.Encoding, b []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(out), "\uFFFD"), nil
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
