package types

// NormalizedSummary is the parsed form of the model's summary output.
// Title is only populated by the legacy labelled format or a JSON "title" field.
type NormalizedSummary struct {
	Title     string   `json:"title,omitempty"`
	Overview  string   `json:"overview"`
	KeyPoints []string `json:"key_points"`
}

// AtmosphereTitles holds the headline candidates. The model contributes at
// most two; on failure the page title is used twice.
type AtmosphereTitles []string

// FallbackTitles returns the page title duplicated, used when headline generation fails
func FallbackTitles(pageTitle string) AtmosphereTitles {
	return AtmosphereTitles{pageTitle, pageTitle}
}

// Result is the uniform outcome reported at the invocation boundary
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}
