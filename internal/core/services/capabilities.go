package services

import (
	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// Capabilities builds the table reported by the types tool. runner may be
// nil, in which case external binaries are reported unavailable.
func Capabilities(
	classifier driven.Classifier,
	runner driven.CommandRunner,
	settings domain.ExtractorSettings,
) []domain.Capability {
	requires := map[domain.MimeClass]string{
		domain.MimeClassImage: settings.OCRCommand,
	}

	classes := []domain.MimeClass{
		domain.MimeClassText,
		domain.MimeClassPDF,
		domain.MimeClassDOCX,
		domain.MimeClassImage,
		domain.MimeClassUnknown,
	}

	table := make([]domain.Capability, 0, len(classes))
	for _, class := range classes {
		c := domain.Capability{
			MimeClass:   class,
			Description: class.Description(),
			Extensions:  classifier.Extensions(class),
			Requires:    requires[class],
			Available:   true,
		}
		if c.Requires != "" {
			c.Available = installed(runner, c.Requires)
		}
		table = append(table, c)
	}
	return table
}

func installed(runner driven.CommandRunner, name string) bool {
	if runner == nil {
		return false
	}
	_, err := runner.LookPath(name)
	return err == nil
}
