// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/page-digest/internal/types"
)

// AppName names the configuration directory.
const AppName = "page-digest"

// Environment variables read after .env loading.
const (
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvDeepSeekKey = "DEEPSEEK_API_KEY"
	EnvWebhookURL  = "PAGE_DIGEST_WEBHOOK_URL"
	EnvAPIToken    = "PAGE_DIGEST_API_TOKEN"
)

// Defaults for fields left empty everywhere.
const (
	DefaultProvider  = types.ProviderOpenAI
	DefaultFormat    = "text"
	DefaultLocale    = "zh_cn"
	DefaultListen    = ":8080"
	DefaultRateLimit = 1.0
	DefaultRateBurst = 5
)

// configFiles are searched in order under the XDG config directory.
var configFiles = []string{"config.yaml", "config.yml", "config.json"}

// Config represents the CLI configuration that can be loaded from a JSON or
// YAML file. All fields are optional; missing values use defaults or must be
// provided via CLI flags or the environment.
type Config struct {
	// Model provider
	Provider       types.Provider `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=openai deepseek"`
	Model          string         `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL        string         `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"` // Overrides the provider default
	OpenAIAPIKey   string         `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`
	DeepSeekAPIKey string         `json:"deepseek_api_key,omitempty" yaml:"deepseek_api_key,omitempty"`
	SystemPrompt   string         `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`

	// Delivery
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty" validate:"omitempty,url"`
	Format     string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=text post"`
	Locale     string `json:"locale,omitempty" yaml:"locale,omitempty" validate:"omitempty,oneof=zh_cn en_us"`

	// Content
	ForbiddenTerms []string `json:"forbidden_terms,omitempty" yaml:"forbidden_terms,omitempty" validate:"dive,required"`
	UseBrowser     bool     `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Render thin pages in headless Chrome

	// HTTP service
	Listen    string   `json:"listen,omitempty" yaml:"listen,omitempty" validate:"omitempty,hostname_port"`
	RateLimit float64  `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" validate:"gte=0"` // Requests per second per client
	RateBurst int      `json:"rate_burst,omitempty" yaml:"rate_burst,omitempty" validate:"gte=0"`
	APITokens []string `json:"api_tokens,omitempty" yaml:"api_tokens,omitempty" validate:"dive,min=16"` // Bearer tokens; empty disables auth

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

var validate = validator.New()

// LoadConfig loads configuration from a JSON or YAML file, chosen by the
// file extension. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// XDGConfigDir returns the XDG config directory for page-digest.
// On Linux: ~/.config/page-digest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// FindConfig returns the first config file found in the XDG config
// directories, or "" when there is none.
func FindConfig() string {
	for _, name := range configFiles {
		if path, err := xdg.SearchConfigFile(filepath.Join(AppName, name)); err == nil {
			return path
		}
	}
	return ""
}

// Load reads the config file at path, or the discovered XDG config file when
// path is empty. It returns an empty config when no file exists, along with
// the path that was used.
func Load(path string) (*Config, string, error) {
	if path == "" {
		path = FindConfig()
		if path == "" {
			return &Config{}, "", nil
		}
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// FromEnv returns the settings carried by environment variables.
func FromEnv() Config {
	cfg := Config{
		OpenAIAPIKey:   strings.TrimSpace(os.Getenv(EnvOpenAIKey)),
		DeepSeekAPIKey: strings.TrimSpace(os.Getenv(EnvDeepSeekKey)),
		WebhookURL:     strings.TrimSpace(os.Getenv(EnvWebhookURL)),
	}
	if token := strings.TrimSpace(os.Getenv(EnvAPIToken)); token != "" {
		cfg.APITokens = []string{token}
	}
	return cfg
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Provider:  DefaultProvider,
		Format:    DefaultFormat,
		Locale:    DefaultLocale,
		Listen:    DefaultListen,
		RateLimit: DefaultRateLimit,
		RateBurst: DefaultRateBurst,
	}
}

// Validate checks field values with the struct tags. Required settings are
// checked later by ProviderConfig, once flags, files and the environment have
// been merged.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fmt.Errorf("config error: %s", describe(fieldErrs))
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer flags over the config file over the environment over
// the built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.DeepSeekAPIKey == "" {
		result.DeepSeekAPIKey = defaults.DeepSeekAPIKey
	}
	if result.SystemPrompt == "" {
		result.SystemPrompt = defaults.SystemPrompt
	}
	if result.WebhookURL == "" {
		result.WebhookURL = defaults.WebhookURL
	}
	if result.Format == "" {
		result.Format = defaults.Format
	}
	if result.Locale == "" {
		result.Locale = defaults.Locale
	}
	if result.Listen == "" {
		result.Listen = defaults.Listen
	}
	if len(result.ForbiddenTerms) == 0 {
		result.ForbiddenTerms = defaults.ForbiddenTerms
	}
	if len(result.APITokens) == 0 {
		result.APITokens = defaults.APITokens
	}

	// Numeric fields: use default if zero
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}
	if result.RateBurst == 0 {
		result.RateBurst = defaults.RateBurst
	}

	// Bool fields: true on either side wins
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// APIKeyFor returns the stored API key of a provider.
func (c *Config) APIKeyFor(provider types.Provider) string {
	switch provider {
	case types.ProviderDeepSeek:
		return c.DeepSeekAPIKey
	case types.ProviderOpenAI:
		return c.OpenAIAPIKey
	default:
		return ""
	}
}

// ProviderConfig resolves the settings of one pipeline run. The API key is
// the one stored for the selected provider.
func (c *Config) ProviderConfig() (types.ProviderConfig, error) {
	return c.resolve()
}

// ModelConfig resolves the provider settings for commands that never
// deliver, so the webhook URL may be missing.
func (c *Config) ModelConfig() (types.ProviderConfig, error) {
	return c.resolve("WebhookURL")
}

func (c *Config) resolve(except ...string) (types.ProviderConfig, error) {
	provider := c.Provider
	if provider == "" {
		provider = DefaultProvider
	}

	pc := types.ProviderConfig{
		Provider:             provider,
		APIKey:               c.APIKeyFor(provider),
		Model:                c.Model,
		SystemPromptOverride: c.SystemPrompt,
		WebhookURL:           c.WebhookURL,
		BaseURL:              c.BaseURL,
	}

	var err error
	if len(except) > 0 {
		err = validate.StructExcept(pc, except...)
	} else {
		err = validate.Struct(pc)
	}
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return types.ProviderConfig{}, fmt.Errorf("config error: %s", describe(fieldErrs))
		}
		return types.ProviderConfig{}, fmt.Errorf("config error: %w", err)
	}
	return pc, nil
}

// describe renders validator errors with the setting names users see.
func describe(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		name := settingName(fe.StructField())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("'%s' is required", name))
		case "url":
			msgs = append(msgs, fmt.Sprintf("'%s' must be a valid URL", name))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("'%s' must be one of: %s", name, fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("'%s' must be non-negative", name))
		case "min":
			msgs = append(msgs, fmt.Sprintf("'%s' entries must be at least %s characters", name, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("'%s' is invalid (%s)", name, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// settingNames maps struct fields to the names used in files and the environment.
var settingNames = map[string]string{
	"APIKey":               "api key (" + EnvOpenAIKey + " or " + EnvDeepSeekKey + ")",
	"WebhookURL":           "webhook_url",
	"BaseURL":              "base_url",
	"Provider":             "provider",
	"Format":               "format",
	"Locale":               "locale",
	"Listen":               "listen",
	"RateLimit":            "rate_limit",
	"RateBurst":            "rate_burst",
	"APITokens":            "api_tokens",
	"ForbiddenTerms":       "forbidden_terms",
	"SystemPromptOverride": "system_prompt",
}

func settingName(field string) string {
	// Slice elements are reported as Field[i]
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	if name, ok := settingNames[field]; ok {
		return name
	}
	return field
}
