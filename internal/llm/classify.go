package llm

import "strings"

// fallbackModel is suggested when a model has no entry in suggestedModels.
const fallbackModel = "gpt-5-mini"

// suggestedModels maps a rejected model to the single model suggested in its place.
var suggestedModels = map[string]string{
	"gpt-5":         "gpt-5-mini",
	"gpt-5-min":     "gpt-5-mini",
	"gpt-5-mini":    "gpt-5-nano",
	"gpt-5-nano":    "gpt-4o-mini",
	"gpt-4o-mini":   "gpt-5-mini",
	"gpt-4o":        "gpt-5-mini",
	"gpt-4-turbo":   "gpt-5-mini",
	"gpt-3.5-turbo": "gpt-5-mini",
}

// validationAlternatives lists, in preference order, the models to look for
// in the provider's model list when the configured model is missing.
var validationAlternatives = map[string][]string{
	"gpt-5":         {"gpt-5-mini", "gpt-5-nano", "gpt-4o"},
	"gpt-5-mini":    {"gpt-5", "gpt-5-nano", "gpt-4o-mini"},
	"gpt-5-nano":    {"gpt-5-mini", "gpt-4o-mini", "gpt-4o"},
	"gpt-4o-mini":   {"gpt-5-mini", "gpt-5-nano", "gpt-4o"},
	"gpt-4o":        {"gpt-5-mini", "gpt-5"},
	"gpt-4-turbo":   {"gpt-5-mini", "gpt-4o"},
	"gpt-3.5-turbo": {"gpt-5-mini", "gpt-4o-mini"},
}

var defaultValidationAlternatives = []string{"gpt-4o-mini", "gpt-3.5-turbo"}

// SuggestedModel returns the model to suggest when model is rejected.
func SuggestedModel(model string) string {
	if alt, ok := suggestedModels[model]; ok {
		return alt
	}
	return fallbackModel
}

// Classify maps an upstream error message to a typed error. Checks run in a
// fixed order and all but the temperature check are case-sensitive.
func Classify(provider, model, message string) error {
	switch {
	case strings.Contains(message, "usage policy") || strings.Contains(message, "content policy"):
		return &PolicyError{Provider: provider, Message: message}
	case strings.Contains(message, "invalid_api_key") || strings.Contains(message, "authentication"):
		return &AuthError{Provider: provider, Message: message}
	case strings.Contains(strings.ToLower(message), "temperature"):
		return &ProviderError{Provider: provider, Message: "parameter error: " + message}
	case strings.Contains(message, "model") ||
		strings.Contains(message, "not found") ||
		strings.Contains(message, "does not exist"):
		return &ModelUnavailableError{Model: model, Alternative: SuggestedModel(model), Message: message}
	default:
		return &ProviderError{Provider: provider, Message: message}
	}
}

// findAlternative returns the first alternative for model that appears in available.
func findAlternative(model string, available []string) string {
	candidates, ok := validationAlternatives[model]
	if !ok {
		candidates = defaultValidationAlternatives
	}
	listed := make(map[string]bool, len(available))
	for _, id := range available {
		listed[id] = true
	}
	for _, candidate := range candidates {
		if listed[candidate] {
			return candidate
		}
	}
	return ""
}
