package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/jonathan/page-digest/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"provider": "deepseek",
		"deepseek_api_key": "ds-key",
		"webhook_url": "https://open.feishu.cn/open-apis/bot/v2/hook/abc",
		"forbidden_terms": ["porn", "casino"],
		"verbose": true
	}`
	path := writeFile(t, t.TempDir(), "config.json", content)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, types.ProviderDeepSeek, cfg.Provider)
	assert.Equal(t, "ds-key", cfg.DeepSeekAPIKey)
	assert.Equal(t, []string{"porn", "casino"}, cfg.ForbiddenTerms)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	content := "provider: openai\nmodel: gpt-4o-mini\nopenai_api_key: sk-test\nformat: post\nlocale: en_us\nrate_limit: 2.5\n"
	path := writeFile(t, t.TempDir(), "config.yaml", content)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, types.ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "post", cfg.Format)
	assert.Equal(t, "en_us", cfg.Locale)
	assert.InDelta(t, 2.5, cfg.RateLimit, 1e-9)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "provider: [unclosed")

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestLoad_SearchesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	cfg, path, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Config{}, *cfg)

	want := writeFile(t, dir, filepath.Join(AppName, "config.yaml"), "model: deepseek-reasoner\n")

	cfg, path, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, want, path)
	assert.Equal(t, "deepseek-reasoner", cfg.Model)
	assert.Equal(t, filepath.Join(dir, AppName), XDGConfigDir())
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.json", `{"model":"m"}`)

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "m", cfg.Model)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvOpenAIKey, " sk-openai ")
	t.Setenv(EnvDeepSeekKey, "sk-deepseek")
	t.Setenv(EnvWebhookURL, "https://example.com/hook")
	t.Setenv(EnvAPIToken, "service-token-0123456789")

	env := FromEnv()

	assert.Equal(t, "sk-openai", env.OpenAIAPIKey)
	assert.Equal(t, "sk-deepseek", env.DeepSeekAPIKey)
	assert.Equal(t, "https://example.com/hook", env.WebhookURL)
	assert.Equal(t, []string{"service-token-0123456789"}, env.APITokens)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty is valid", Config{}, ""},
		{"defaults are valid", Defaults(), ""},
		{"unknown provider", Config{Provider: "anthropic"}, "'provider' must be one of: openai deepseek"},
		{"bad webhook", Config{WebhookURL: "not a url"}, "'webhook_url' must be a valid URL"},
		{"bad format", Config{Format: "card"}, "'format' must be one of"},
		{"bad locale", Config{Locale: "fr_fr"}, "'locale' must be one of"},
		{"negative rate", Config{RateLimit: -1}, "'rate_limit' must be non-negative"},
		{"bad listen", Config{Listen: "nope"}, "'listen' is invalid"},
		{"short api token", Config{APITokens: []string{"short"}}, "'api_tokens' entries must be at least 16 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		Provider:     types.ProviderOpenAI,
		OpenAIAPIKey: "sk-env",
		WebhookURL:   "https://example.com/env",
		Format:       "text",
		RateBurst:    5,
		UseBrowser:   true,
	}

	partial := Config{
		Provider:   types.ProviderDeepSeek,
		WebhookURL: "https://example.com/file",
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, types.ProviderDeepSeek, merged.Provider)
	assert.Equal(t, "https://example.com/file", merged.WebhookURL)

	// Default values should fill in empty fields
	assert.Equal(t, "sk-env", merged.OpenAIAPIKey)
	assert.Equal(t, "text", merged.Format)
	assert.Equal(t, 5, merged.RateBurst)
	assert.True(t, merged.UseBrowser)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Model: "gpt-4o", Verbose: true}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "gpt-4o", merged.Model)
	assert.True(t, merged.Verbose)
}

func TestProviderConfig_ResolvesKeyByProvider(t *testing.T) {
	cfg := Config{
		Provider:       types.ProviderDeepSeek,
		OpenAIAPIKey:   "sk-openai",
		DeepSeekAPIKey: "sk-deepseek",
		WebhookURL:     "https://example.com/hook",
		SystemPrompt:   "custom",
	}

	pc, err := cfg.ProviderConfig()
	require.NoError(t, err)

	assert.Equal(t, types.ProviderDeepSeek, pc.Provider)
	assert.Equal(t, "sk-deepseek", pc.APIKey)
	assert.Equal(t, "custom", pc.SystemPromptOverride)

	cfg.Provider = ""
	pc, err = cfg.ProviderConfig()
	require.NoError(t, err)
	assert.Equal(t, types.ProviderOpenAI, pc.Provider)
	assert.Equal(t, "sk-openai", pc.APIKey)
}

func TestProviderConfig_MissingSettings(t *testing.T) {
	cfg := Config{Provider: types.ProviderDeepSeek, OpenAIAPIKey: "sk-openai"}

	_, err := cfg.ProviderConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvDeepSeekKey)
	assert.Contains(t, err.Error(), "'webhook_url' is required")
}

func TestAPIKeyFor_Unknown(t *testing.T) {
	cfg := Config{OpenAIAPIKey: "a", DeepSeekAPIKey: "b"}
	assert.Empty(t, cfg.APIKeyFor("other"))
}

func TestModelConfig_WebhookOptional(t *testing.T) {
	cfg := Config{OpenAIAPIKey: "sk-openai"}

	pc, err := cfg.ModelConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", pc.APIKey)
	assert.Empty(t, pc.WebhookURL)

	cfg.OpenAIAPIKey = ""
	_, err = cfg.ModelConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvOpenAIKey)
	assert.NotContains(t, err.Error(), "webhook_url")
}
