package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/page-digest/internal/ingestion"
	"github.com/jonathan/page-digest/internal/logging"
	"github.com/jonathan/page-digest/internal/pipeline"
	"github.com/jonathan/page-digest/internal/server"
	"github.com/jonathan/page-digest/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server that exposes POST /v1/messages (extractContent and processAndSend),
POST /v1/messages/stream (processAndSend with progress events) and GET /health.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addProviderFlags(serveCmd)
	addDeliveryFlags(serveCmd)
	serveCmd.Flags().String("listen", "", "Address to listen on (default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	// The service logs JSON for collectors
	logger := logging.NewJSON(os.Stderr, cfg.Verbose)

	pc, err := cfg.ProviderConfig()
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

	srv, err := server.New(server.Config{
		Addr:      cfg.Listen,
		Collector: ingestion.NewCollector(cfg.UseBrowser, logger),
		Pipeline: pipeline.Options{
			Client:       client,
			Sanitizer:    ingestion.NewSanitizer(cfg.ForbiddenTerms),
			SystemPrompt: pc.SystemPromptOverride,
			WebhookURL:   pc.WebhookURL,
			Render:       render,
		},
		RateLimit: ratelimit.LoadConfig(cfg.RateLimit, cfg.RateBurst),
		APITokens: cfg.APITokens,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s (model %s)\n", cfg.Listen, client.Model())
	return srv.Start(ctx)
}
