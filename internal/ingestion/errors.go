package ingestion

import (
	"fmt"
	"strings"
)

// ErrMsgPageUnreachable is shown to the user when no page content could be
// collected, neither over HTTP nor through the browser.
const ErrMsgPageUnreachable = "cannot access page content, refresh the page and retry"

// ExtractionError represents a failure to collect page content. Message is
// safe to show to the user as is.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ContentRejectedError is returned when page content matches the deny-list.
type ContentRejectedError struct {
	Terms []string
}

func (e *ContentRejectedError) Error() string {
	return fmt.Sprintf("content rejected: contains forbidden terms: %s", strings.Join(e.Terms, ", "))
}
