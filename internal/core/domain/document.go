package domain

import "time"

// Document represents an ingested file.
// It is the canonical representation after extraction and chunking.
type Document struct {
	// ID is the user-facing handle used in @id mentions and tool arguments.
	ID string

	// SourcePath is the absolute path the document was read from.
	SourcePath string

	// Filename is the base name of SourcePath.
	Filename string

	// MimeClass is the processing strategy chosen by the classifier.
	MimeClass MimeClass

	// MIMEType is the IANA media type, sniffed or derived from the extension.
	MIMEType string

	// SizeBytes is the size of the raw file.
	SizeBytes int64

	// CreatedAt is the file creation time where the platform reports one,
	// otherwise the modification time.
	CreatedAt time.Time

	// ModifiedAt is the file modification time.
	ModifiedAt time.Time

	// IngestedAt is when the document entered the store.
	IngestedAt time.Time

	// Encoding is the detected character encoding. Empty for non-text files.
	Encoding string

	// Content is the full extracted text. Immutable once ingested.
	Content string

	// Metadata holds extractor-specific properties such as page_count,
	// author or width.
	Metadata map[string]any

	// Chunks is the ordered partition of Content.
	Chunks []Chunk
}

// Chunk represents a bounded contiguous slice of a document's text.
type Chunk struct {
	// Index is the 0-based position within the document.
	Index int `json:"index"`

	// DocumentID links to the owning Document.
	DocumentID string `json:"doc_id"`

	// Content is the text of this chunk.
	Content string `json:"content"`

	// StartOffset is the byte offset of Content within Document.Content.
	StartOffset int `json:"start_offset"`

	// EndOffset is the exclusive end byte offset. It always equals the
	// StartOffset of the following chunk.
	EndOffset int `json:"end_offset"`
}

// Len returns the chunk length in characters.
func (c Chunk) Len() int {
	return len([]rune(c.Content))
}

// DocumentMetadata is the view of a document returned by the metadata tool.
type DocumentMetadata struct {
	ID            string         `json:"id"`
	Filename      string         `json:"filename"`
	Path          string         `json:"path"`
	MimeClass     MimeClass      `json:"mime_class"`
	MIMEType      string         `json:"mime_type"`
	SizeBytes     int64          `json:"size_bytes"`
	CreatedAt     time.Time      `json:"created_at"`
	ModifiedAt    time.Time      `json:"modified_at"`
	IngestedAt    time.Time      `json:"ingested_at"`
	Encoding      string         `json:"encoding,omitempty"`
	ChunkCount    int            `json:"chunk_count"`
	ContentLength int            `json:"content_length"`
	Extracted     map[string]any `json:"extracted,omitempty"`
}

// MetadataOf builds the metadata view of a document.
func MetadataOf(doc *Document) DocumentMetadata {
	return DocumentMetadata{
		ID:            doc.ID,
		Filename:      doc.Filename,
		Path:          doc.SourcePath,
		MimeClass:     doc.MimeClass,
		MIMEType:      doc.MIMEType,
		SizeBytes:     doc.SizeBytes,
		CreatedAt:     doc.CreatedAt,
		ModifiedAt:    doc.ModifiedAt,
		IngestedAt:    doc.IngestedAt,
		Encoding:      doc.Encoding,
		ChunkCount:    len(doc.Chunks),
		ContentLength: len([]rune(doc.Content)),
		Extracted:     doc.Metadata,
	}
}

// DocumentSummary is the short form of a document returned by the process tool.
type DocumentSummary struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	MimeClass  MimeClass `json:"mime_class"`
	SizeBytes  int64     `json:"size_bytes"`
	ChunkCount int       `json:"chunk_count"`
	Preview    string    `json:"preview,omitempty"`
}

// previewLength bounds DocumentSummary.Preview in characters.
const previewLength = 200

// SummaryOf builds the summary view of a document.
func SummaryOf(doc *Document) DocumentSummary {
	preview := []rune(doc.Content)
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	return DocumentSummary{
		ID:         doc.ID,
		Filename:   doc.Filename,
		MimeClass:  doc.MimeClass,
		SizeBytes:  doc.SizeBytes,
		ChunkCount: len(doc.Chunks),
		Preview:    string(preview),
	}
}
