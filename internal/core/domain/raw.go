package domain

// RawDocument represents bytes read from disk before extraction.
type RawDocument struct {
	// Path is the absolute file path.
	Path string

	// MimeClass is the classifier's decision for this file.
	MimeClass MimeClass

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Extraction is the output of an extractor.
type Extraction struct {
	// Text is the extracted text, always valid UTF-8.
	Text string

	// Encoding is the source encoding for text files.
	Encoding string

	// Metadata contains extractor-specific key-value pairs.
	Metadata map[string]any
}
