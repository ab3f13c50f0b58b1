package ingestion

import (
	"strings"
	"unicode/utf8"
)

// MaxContentLength is the content cap, in runes, applied after extraction and
// again during sanitization.
const MaxContentLength = 12000

// TruncationMarker is appended to capped content. It counts toward the cap.
const TruncationMarker = "..."

// RuneLen returns the length of s in runes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// CollapseWhitespace replaces every run of Unicode whitespace with a single
// space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate caps s at maxRunes runes. Capped text ends with TruncationMarker and
// the result is never longer than maxRunes, so truncating twice is a no-op.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if RuneLen(s) <= maxRunes {
		return s
	}

	runes := []rune(s)
	markerLen := RuneLen(TruncationMarker)
	if maxRunes <= markerLen {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-markerLen]) + TruncationMarker
}

// Prefix returns at most the first n runes of s, without a marker.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if RuneLen(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
