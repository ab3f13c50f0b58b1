package llm

import (
	"testing"

	"github.com/jonathan/page-digest/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecFor(t *testing.T) {
	openaiSpec, err := SpecFor(types.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "OpenAI", openaiSpec.DisplayName)
	assert.Equal(t, "https://api.openai.com/v1", openaiSpec.BaseURL)
	assert.True(t, openaiSpec.SupportsJSONMode)
	assert.Equal(t, "gpt-5-mini", openaiSpec.DefaultModel)

	deepseekSpec, err := SpecFor(types.ProviderDeepSeek)
	require.NoError(t, err)
	assert.Equal(t, "DeepSeek", deepseekSpec.DisplayName)
	assert.Equal(t, "https://api.deepseek.com/v1", deepseekSpec.BaseURL)
	assert.False(t, deepseekSpec.SupportsJSONMode)
	assert.Equal(t, "deepseek-chat", deepseekSpec.DefaultModel)
}

func TestSpecFor_Unknown(t *testing.T) {
	_, err := SpecFor("anthropic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestTemperatureForStyle(t *testing.T) {
	tests := []struct {
		provider types.Provider
		model    string
		want     float64
	}{
		{types.ProviderOpenAI, "gpt-5", 1.0},
		{types.ProviderOpenAI, "gpt-5-mini", 1.0},
		{types.ProviderOpenAI, "gpt-5-nano", 1.0},
		{types.ProviderOpenAI, "gpt-5-pro", 0.7},
		{types.ProviderDeepSeek, "gpt-5", 0.7},
		{types.ProviderOpenAI, "gpt-4o", 0.6},
		{types.ProviderDeepSeek, "deepseek-chat", 0.6},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider)+"/"+tt.model, func(t *testing.T) {
			assert.InDelta(t, tt.want, TemperatureForStyle{}.Temperature(tt.provider, tt.model), 1e-9)
		})
	}
}

func TestTemperatureFixed(t *testing.T) {
	policy := TemperatureFixed(1.0)
	assert.InDelta(t, 1.0, policy.Temperature(types.ProviderDeepSeek, "deepseek-chat"), 1e-9)
	assert.InDelta(t, 1.0, policy.Temperature(types.ProviderOpenAI, "gpt-4o"), 1e-9)
}
