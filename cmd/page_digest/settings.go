package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/page-digest/internal/config"
	"github.com/jonathan/page-digest/internal/llm"
	"github.com/jonathan/page-digest/internal/logging"
	"github.com/jonathan/page-digest/internal/rendering"
	"github.com/jonathan/page-digest/internal/types"
)

// addProviderFlags registers the flags that select and reach the model.
func addProviderFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "Model provider: openai or deepseek (default openai)")
	cmd.Flags().StringP("model", "m", "", "Model id (defaults to the provider's default model)")
	cmd.Flags().String("base-url", "", "Override the provider API base URL")
}

// addDeliveryFlags registers the flags that shape and deliver the message.
func addDeliveryFlags(cmd *cobra.Command) {
	cmd.Flags().String("webhook", "", "Feishu bot webhook URL (defaults to PAGE_DIGEST_WEBHOOK_URL)")
	cmd.Flags().String("format", "", "Message format: text or post (default text)")
	cmd.Flags().String("locale", "", "Message labels: zh_cn or en_us (default zh_cn)")
	cmd.Flags().String("system-prompt", "", "Replace the built-in summary system prompt")
	cmd.Flags().Bool("use-browser", false, "Render thin or unreachable pages in headless Chrome")
}

// flagOverrides returns the settings given explicitly on the command line.
// Flags a command does not define are ignored.
func flagOverrides(cmd *cobra.Command) config.Config {
	var cfg config.Config
	flags := cmd.Flags()

	str := func(name string, dst *string) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}

	var provider string
	str("provider", &provider)
	cfg.Provider = types.Provider(provider)
	str("model", &cfg.Model)
	str("base-url", &cfg.BaseURL)
	str("webhook", &cfg.WebhookURL)
	str("format", &cfg.Format)
	str("locale", &cfg.Locale)
	str("system-prompt", &cfg.SystemPrompt)
	str("listen", &cfg.Listen)
	boolean("use-browser", &cfg.UseBrowser)
	boolean("verbose", &cfg.Verbose)
	return cfg
}

// layer combines the sources of settings: flags over the file over the
// environment over the built-in defaults.
func layer(flags, file, env config.Config) config.Config {
	cfg := flags.MergeWithDefaults(file)
	cfg = cfg.MergeWithDefaults(env)
	return cfg.MergeWithDefaults(config.Defaults())
}

// loadSettings resolves and validates the settings of a command and builds
// its logger.
func loadSettings(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	fileCfg, usedPath, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := fileCfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("%s: %w", usedPath, err)
	}

	cfg := layer(flagOverrides(cmd), *fileCfg, config.FromEnv())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger := logging.New(os.Stderr, cfg.Verbose)
	if usedPath != "" {
		logger.Debug("loaded config", "path", usedPath)
	}
	return cfg, logger, nil
}

// renderOptions converts the validated format and locale settings.
func renderOptions(cfg config.Config) (rendering.Options, error) {
	format, err := rendering.ParseFormat(cfg.Format)
	if err != nil {
		return rendering.Options{}, err
	}
	locale, err := rendering.ParseLocale(cfg.Locale)
	if err != nil {
		return rendering.Options{}, err
	}
	return rendering.Options{Format: format, Locale: locale}, nil
}

// newClient creates the model client for resolved provider settings.
func newClient(pc types.ProviderConfig, logger *slog.Logger) (*llm.Client, error) {
	client, err := llm.NewClient(llm.Config{
		Provider: pc.Provider,
		APIKey:   pc.APIKey,
		Model:    pc.Model,
		BaseURL:  pc.BaseURL,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return client, nil
}
