package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/gemini-relay/internal/adapters/llm"
	"github.com/PabloGalante/gemini-relay/internal/observability"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the Gemini models available to the API key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyFlags(cfg)

		client, err := llm.NewGeminiClient(cmd.Context(), cfg.APIKey, cfg.ModelName, "")
		if err != nil {
			return err
		}

		names, err := client.ListModels(cmd.Context())
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

// logAvailableModels runs in the background at startup; failures are only logged.
func logAvailableModels(ctx context.Context, client *llm.GeminiClient) {
	log := observability.Logger()

	names, err := client.ListModels(ctx)
	if err != nil {
		log.Warn("could not list models", "error", err)
		return
	}
	if len(names) == 0 {
		log.Warn("no models found, check the API key")
		return
	}
	log.Info("available models", "count", len(names), "models", names)
}
