package llm

import "fmt"

// AuthError is returned when the provider rejects the API key.
type AuthError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s API key is invalid, check that the key is correct", e.Provider)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// PolicyError is returned when the provider refuses the content on policy grounds.
type PolicyError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("content violates the %s usage policy, try different content or change the prompt: %s",
		e.Provider, e.Message)
}

func (e *PolicyError) Unwrap() error {
	return e.Cause
}

// ModelUnavailableError is returned when the configured model cannot be used.
// Alternative names a model to try instead, when one is known.
type ModelUnavailableError struct {
	Model       string
	Alternative string
	Message     string
	Cause       error
}

func (e *ModelUnavailableError) Error() string {
	msg := fmt.Sprintf("model %s is unavailable", e.Model)
	if e.Alternative != "" {
		msg += fmt.Sprintf(", try %s instead", e.Alternative)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Cause
}

// ProviderError represents any other upstream or transport failure.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
