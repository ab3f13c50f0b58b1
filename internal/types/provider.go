package types

// Provider identifies a chat-completion API flavour
type Provider string

// Supported providers
const (
	// ProviderOpenAI is the OpenAI chat-completion API
	ProviderOpenAI Provider = "openai"
	// ProviderDeepSeek is the OpenAI-compatible DeepSeek API
	ProviderDeepSeek Provider = "deepseek"
)

// ProviderConfig holds everything one pipeline run needs to reach the model
// API and the destination webhook. It is read-only for the duration of a run.
type ProviderConfig struct {
	Provider             Provider `json:"provider" yaml:"provider" validate:"required,oneof=openai deepseek"`
	APIKey               string   `json:"api_key" yaml:"api_key" validate:"required"`
	Model                string   `json:"model,omitempty" yaml:"model,omitempty"`
	SystemPromptOverride string   `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	WebhookURL           string   `json:"webhook_url" yaml:"webhook_url" validate:"required,url"`
	BaseURL              string   `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"` // Overrides the provider default
}
