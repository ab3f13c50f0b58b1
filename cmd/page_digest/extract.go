package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/page-digest/internal/ingestion"
	"github.com/jonathan/page-digest/internal/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Print the extracted content of a page",
	Long:  `Collects the page at url and prints the extraction response envelope as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().Bool("use-browser", false, "Render thin or unreachable pages in headless Chrome")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	collector := ingestion.NewCollector(cfg.UseBrowser, logger)
	resp := collector.Handle(cmd.Context(), types.ExtractionRequest{
		Action: types.ActionExtractContent,
		URL:    strings.TrimSpace(args[0]),
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("extraction failed")
	}
	return nil
}
