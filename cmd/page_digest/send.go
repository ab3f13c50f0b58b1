package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/page-digest/internal/config"
	"github.com/jonathan/page-digest/internal/ingestion"
	"github.com/jonathan/page-digest/internal/observability"
	"github.com/jonathan/page-digest/internal/pipeline"
	"github.com/jonathan/page-digest/internal/types"
)

var sendCmd = &cobra.Command{
	Use:   "send [url]",
	Short: "Summarize a page and post it to the webhook",
	Long: `Collects the page at url (or reads an extracted page with --page), generates the
headlines and summary, and posts the assembled message to the Feishu bot webhook.

With --dry-run the message is printed instead of delivered and no webhook URL is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	addProviderFlags(sendCmd)
	addDeliveryFlags(sendCmd)
	sendCmd.Flags().String("page", "", "Read page content JSON from a file instead of collecting a URL (- for stdin)")
	sendCmd.Flags().Bool("dry-run", false, "Print the message instead of delivering it")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pagePath, _ := cmd.Flags().GetString("page")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if len(args) == 0 && pagePath == "" {
		return fmt.Errorf("either a url argument or --page must be provided")
	}
	if len(args) > 0 && pagePath != "" {
		return fmt.Errorf("a url argument and --page are mutually exclusive; provide only one")
	}

	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	pc, err := providerSettings(cfg, dryRun)
	if err != nil {
		return err
	}
	render, err := renderOptions(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(pc, logger)
	if err != nil {
		return err
	}

	var page types.PageContent
	if pagePath != "" {
		page, err = readPage(pagePath, cmd.InOrStdin())
	} else {
		page, err = ingestion.NewCollector(cfg.UseBrowser, logger).Collect(ctx, strings.TrimSpace(args[0]))
	}
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Client:       client,
		Sanitizer:    ingestion.NewSanitizer(cfg.ForbiddenTerms),
		SystemPrompt: pc.SystemPromptOverride,
		WebhookURL:   pc.WebhookURL,
		Render:       render,
		DryRun:       dryRun,
		RunID:        uuid.NewString(),
		Logger:       logger,
	}
	out := cmd.OutOrStdout()
	if cfg.Verbose {
		opts.Printer = observability.NewPrinter(out)
	}

	outcome, err := pipeline.Run(ctx, page, opts)
	if err != nil {
		return err
	}

	if dryRun {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(outcome.Message)
	}
	_, _ = fmt.Fprintf(out, "Message delivered (run %s)\n", outcome.RunID)
	return nil
}

// providerSettings resolves the provider settings; a dry run needs no webhook.
func providerSettings(cfg config.Config, dryRun bool) (types.ProviderConfig, error) {
	if dryRun {
		return cfg.ModelConfig()
	}
	return cfg.ProviderConfig()
}

// readPage reads extracted page content as JSON from a file or stdin.
func readPage(path string, stdin io.Reader) (types.PageContent, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return types.PageContent{}, fmt.Errorf("failed to read page: %w", err)
	}

	var page types.PageContent
	if err := json.Unmarshal(data, &page); err != nil {
		return types.PageContent{}, fmt.Errorf("failed to parse page JSON: %w", err)
	}
	return page, nil
}
