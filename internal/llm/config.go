// Package llm provides the chat completion client used for summaries and
// headlines. Both supported providers speak the OpenAI-compatible API.
package llm

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonathan/page-digest/internal/prompts"
	"github.com/jonathan/page-digest/internal/types"
)

// ProviderSpec describes an OpenAI-compatible provider.
type ProviderSpec struct {
	Name             types.Provider
	DisplayName      string
	BaseURL          string
	SupportsJSONMode bool
	DefaultModel     string
}

var providerSpecs = map[types.Provider]ProviderSpec{
	types.ProviderOpenAI: {
		Name:             types.ProviderOpenAI,
		DisplayName:      "OpenAI",
		BaseURL:          "https://api.openai.com/v1",
		SupportsJSONMode: true,
		DefaultModel:     "gpt-5-mini",
	},
	types.ProviderDeepSeek: {
		Name:             types.ProviderDeepSeek,
		DisplayName:      "DeepSeek",
		BaseURL:          "https://api.deepseek.com/v1",
		SupportsJSONMode: false,
		DefaultModel:     "deepseek-chat",
	},
}

// SpecFor returns the spec of a known provider.
func SpecFor(provider types.Provider) (ProviderSpec, error) {
	spec, ok := providerSpecs[provider]
	if !ok {
		return ProviderSpec{}, fmt.Errorf("unsupported provider %q", provider)
	}
	return spec, nil
}

// Config holds the settings for a Client.
type Config struct {
	Provider types.Provider
	APIKey   string
	// Model defaults to the provider's default model.
	Model string
	// BaseURL overrides the provider's base URL.
	BaseURL     string
	HTTPClient  *http.Client
	MaxAttempts int
	Backoff     BackoffFunc
	Logger      *slog.Logger
}

// DefaultMaxAttempts is the retry budget for a completion call.
const DefaultMaxAttempts = 3

// TemperaturePolicy chooses the sampling temperature for a request.
type TemperaturePolicy interface {
	Temperature(provider types.Provider, model string) float64
}

// TemperatureFixed always uses the same temperature.
type TemperatureFixed float64

// Temperature implements TemperaturePolicy.
func (t TemperatureFixed) Temperature(types.Provider, string) float64 {
	return float64(t)
}

// TemperatureForStyle picks the temperature from the prompt style of the
// model. OpenAI models that only accept the default temperature get 1.0.
type TemperatureForStyle struct{}

// defaultTemperatureOnly lists OpenAI models that reject any other temperature.
var defaultTemperatureOnly = map[string]bool{
	"gpt-5":      true,
	"gpt-5-mini": true,
	"gpt-5-nano": true,
}

// Temperature implements TemperaturePolicy.
func (TemperatureForStyle) Temperature(provider types.Provider, model string) float64 {
	if provider == types.ProviderOpenAI && defaultTemperatureOnly[model] {
		return 1.0
	}
	if prompts.StyleForModel(model) == prompts.StyleEnglish {
		return 0.7
	}
	return 0.6
}
