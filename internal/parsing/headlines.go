package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/page-digest/internal/types"
)

// MaxHeadlines is the number of headline candidates kept.
const MaxHeadlines = 2

var headlineSeparator = regexp.MustCompile(`[,，]`)

// ParseHeadlines splits comma-separated headline output, accepting ASCII or
// full-width commas, and keeps at most MaxHeadlines non-empty entries.
func ParseHeadlines(text types.RawModelOutput) types.AtmosphereTitles {
	titles := make(types.AtmosphereTitles, 0, MaxHeadlines)
	for _, part := range headlineSeparator.Split(strings.TrimSpace(text), -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		titles = append(titles, part)
		if len(titles) == MaxHeadlines {
			break
		}
	}
	return titles
}
