package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available from the provider",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	addProviderFlags(modelsCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	pc, err := cfg.ModelConfig()
	if err != nil {
		return err
	}
	client, err := newClient(pc, logger)
	if err != nil {
		return err
	}

	models, err := client.ListModels(cmd.Context())
	if err != nil {
		return err
	}
	sort.Strings(models)

	out := cmd.OutOrStdout()
	for _, id := range models {
		marker := " "
		if id == client.Model() {
			marker = "*"
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", marker, id)
	}
	return nil
}
