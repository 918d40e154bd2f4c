package domain

// Capability describes how one mime class is handled, as reported by the
// types tool.
type Capability struct {
	MimeClass   MimeClass `json:"mime_class"`
	Description string    `json:"description"`
	Extensions  []string  `json:"extensions,omitempty"`

	// Requires names an external binary the extractor depends on.
	Requires string `json:"requires,omitempty"`

	// Available is false when Requires is set but not installed.
	Available bool `json:"available"`
}
