package domain

// MimeClass selects the extraction strategy for a file.
type MimeClass string

// Supported mime classes.
const (
	MimeClassText    MimeClass = "text"
	MimeClassPDF     MimeClass = "pdf"
	MimeClassDOCX    MimeClass = "docx"
	MimeClassImage   MimeClass = "image"
	MimeClassUnknown MimeClass = "unknown"
)

// IsValid returns true if the class is recognised.
func (c MimeClass) IsValid() bool {
	switch c {
	case MimeClassText, MimeClassPDF, MimeClassDOCX, MimeClassImage, MimeClassUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c MimeClass) String() string {
	return string(c)
}

// Description returns a human-readable description of the class.
func (c MimeClass) Description() string {
	switch c {
	case MimeClassText:
		return "Plain text and source files"
	case MimeClassPDF:
		return "PDF documents"
	case MimeClassDOCX:
		return "Word documents"
	case MimeClassImage:
		return "Images (OCR)"
	case MimeClassUnknown:
		return "Unrecognised files, read as text"
	default:
		return "Unknown"
	}
}
