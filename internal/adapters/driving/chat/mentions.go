package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// defaultMentionTemplate wraps a mentioned document. It takes the document
// id and the document text.
const defaultMentionTemplate = "<document id=\"%s\">\n%s\n</document>"

// mentionPattern matches @id at the start of the text or after whitespace,
// so e-mail addresses are not treated as mentions.
var mentionPattern = regexp.MustCompile(`(?:^|\s)@([^\s@]+)`)

// trailingPunctuation may follow a mention in prose ("see @report.pdf.").
const trailingPunctuation = `.,;:!?)]}'"`

// MentionResolver returns the full text of a document id.
type MentionResolver interface {
	ResolveMention(ctx context.Context, id string) (string, error)
}

// ParseMentions returns the raw @id tokens in text, in order of appearance.
func ParseMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, m[1])
	}
	return tokens
}

// ExpandMentions appends the text of every resolvable mention to the
// message using template. The message itself is left as written. Each
// unresolved mention produces a warning.
func ExpandMentions(
	ctx context.Context,
	resolver MentionResolver,
	template string,
	text string,
) (string, []string) {
	if strings.Count(template, "%s") != 2 {
		template = defaultMentionTemplate
	}

	var (
		out      strings.Builder
		warnings []string
		seen     = make(map[string]bool)
	)
	out.WriteString(text)

	for _, token := range ParseMentions(text) {
		id, content, err := resolveToken(ctx, resolver, token)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				warnings = append(warnings, fmt.Sprintf("@%s does not match a loaded document; sent as written", token))
			} else {
				warnings = append(warnings, fmt.Sprintf("@%s could not be resolved: %v", token, err))
			}
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		out.WriteString("\n\n")
		fmt.Fprintf(&out, template, id, content)
	}
	return out.String(), warnings
}

// resolveToken tries the token as written, then with trailing punctuation
// removed one character at a time.
func resolveToken(ctx context.Context, resolver MentionResolver, token string) (string, string, error) {
	candidate := token
	for {
		content, err := resolver.ResolveMention(ctx, candidate)
		if err == nil {
			return candidate, content, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", "", err
		}

		last := candidate[len(candidate)-1:]
		if len(candidate) == 1 || !strings.Contains(trailingPunctuation, last) {
			return "", "", err
		}
		candidate = candidate[:len(candidate)-1]
	}
}
