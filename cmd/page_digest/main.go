// Package main provides the page_digest command line tool and HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "page_digest",
	Short: "Summarize web pages into Feishu bot messages",
	Long: `page_digest extracts the readable content of a web page, asks an OpenAI-compatible
model for two headlines, an overview and three key points, and posts the result to a
Feishu custom bot webhook.

Settings come from flags, then the config file (--config or $XDG_CONFIG_HOME/page-digest/config.yaml),
then the environment (OPENAI_API_KEY, DEEPSEEK_API_KEY, PAGE_DIGEST_WEBHOOK_URL).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug logs and the intermediate results")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
