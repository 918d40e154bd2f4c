// Package extractors wires the per-format extractors together.
package extractors

import (
	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/extractors/docx"
	"github.com/custodia-labs/adam/internal/extractors/image"
	"github.com/custodia-labs/adam/internal/extractors/pdf"
	"github.com/custodia-labs/adam/internal/extractors/text"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry selects an extractor per mime class.
type Registry struct {
	text  driven.Extractor
	pdf   driven.Extractor
	docx  driven.Extractor
	image driven.Extractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(textEx, pdfEx, docxEx, imageEx driven.Extractor) *Registry {
	return &Registry{text: textEx, pdf: pdfEx, docx: docxEx, image: imageEx}
}

// NewDefaultRegistry builds the standard extractors. External binaries
// named in settings are executed through runner.
func NewDefaultRegistry(runner driven.CommandRunner, settings domain.ExtractorSettings) *Registry {
	return NewRegistry(
		text.New(),
		pdf.New(runner, settings.PDFCommand),
		docx.New(),
		image.New(runner, settings.OCRCommand),
	)
}

// For returns the extractor for class. Unknown classes use the text extractor.
func (r *Registry) For(class domain.MimeClass) driven.Extractor {
	switch class {
	case domain.MimeClassPDF:
		return r.pdf
	case domain.MimeClassDOCX:
		return r.docx
	case domain.MimeClassImage:
		return r.image
	case domain.MimeClassText, domain.MimeClassUnknown:
		return r.text
	default:
		return r.text
	}
}
