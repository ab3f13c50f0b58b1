package ingestion

import (
	"strings"

	"github.com/jonathan/page-digest/internal/types"
)

// DefaultForbiddenTerms is the deny-list used when none is configured.
var DefaultForbiddenTerms = []string{"porn"}

// Sanitizer screens page content against a deny-list and normalizes it for
// prompting.
type Sanitizer struct {
	ForbiddenTerms []string
}

// NewSanitizer creates a sanitizer. A nil or empty list selects
// DefaultForbiddenTerms.
func NewSanitizer(terms []string) *Sanitizer {
	if len(terms) == 0 {
		terms = DefaultForbiddenTerms
	}
	return &Sanitizer{ForbiddenTerms: terms}
}

// Sanitize checks the page against the default deny-list.
func Sanitize(page types.PageContent) (types.SanitizedContent, error) {
	return NewSanitizer(nil).Sanitize(page)
}

// Sanitize rejects pages whose title or content contains a forbidden term,
// then collapses whitespace and caps the content.
func (s *Sanitizer) Sanitize(page types.PageContent) (types.SanitizedContent, error) {
	if found := findForbiddenTerms(page.Title+" "+page.Content, s.ForbiddenTerms); len(found) > 0 {
		return types.SanitizedContent{}, &ContentRejectedError{Terms: found}
	}

	page.Content = Truncate(CollapseWhitespace(page.Content), MaxContentLength)
	return types.SanitizedContent{PageContent: page}, nil
}

// findForbiddenTerms returns every term that occurs in text, case-insensitively.
func findForbiddenTerms(text string, terms []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	return found
}
