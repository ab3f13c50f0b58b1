// Package parsing turns raw model output into structured summaries and headlines.
package parsing

import (
	"regexp"
	"strings"
)

// fencePattern matches markdown code fence markers. Models often wrap JSON in
// ```json ... ``` even when told not to.
var fencePattern = regexp.MustCompile("(?i)```(?:json)?")

// StripFences removes every code fence marker and trims the result.
func StripFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}

// JSONSpan returns the text from the first '{' through the last '}', or ""
// when there is no such span. Preambles and trailing chatter are dropped.
func JSONSpan(text string) string {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last <= first {
		return ""
	}
	return text[first : last+1]
}
