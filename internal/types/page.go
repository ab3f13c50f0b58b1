// Package types provides type definitions for structured data used throughout the page-digest system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// PageContent is the best-effort readable content of one web page
type PageContent struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"` // Plain text, paragraph fragments joined by blank lines
}

// SanitizedContent is page content that passed the deny-list check and was
// whitespace-normalized and length-capped. Only the sanitizer constructs it.
type SanitizedContent struct {
	PageContent
}

// ExtractionRequest asks the page collector for the content of a page.
type ExtractionRequest struct {
	Action string `json:"action"`        // Always ActionExtractContent
	URL    string `json:"url,omitempty"` // Page to collect
}

// ExtractionResponse is the collector's reply to an ExtractionRequest.
type ExtractionResponse struct {
	Success bool         `json:"success"`
	Data    *PageContent `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Collector actions
const (
	// ActionExtractContent requests page extraction
	ActionExtractContent = "extractContent"
	// ActionProcessAndSend requests the full digest pipeline
	ActionProcessAndSend = "processAndSend"
)
