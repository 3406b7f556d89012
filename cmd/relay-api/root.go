package main

import (
	"github.com/spf13/cobra"

	"github.com/PabloGalante/gemini-relay/internal/config"
	"github.com/PabloGalante/gemini-relay/internal/observability"
)

const (
	serviceName = "gemini-relay"
	version     = "0.3.0"
)

var rootCmd = &cobra.Command{
	Use:   "relay-api",
	Short: "Relay prompts and file attachments to Gemini",
	Long: `relay-api accepts a prompt and an optional file over HTTP, uploads the file
to the Gemini file store, keeps a running conversation and returns the generated text.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

var cfg *config.Config

func loadConfig(cmd *cobra.Command, _ []string) error {
	if !config.LoadDotEnv() {
		observability.Logger().Debug("no .env file found, using environment variables")
	}

	c, err := config.Load()
	if err != nil {
		observability.Logger().Error("invalid configuration", "error", err)
		return err
	}
	observability.SetLevel(c.LogLevel)
	cfg = c
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPort, "port", "", "listen port (overrides PORT)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Gemini model name (overrides RELAY_MODEL_NAME)")
}

var (
	flagPort  string
	flagModel string
)

func applyFlags(c *config.Config) {
	if flagPort != "" {
		c.Port = flagPort
	}
	if flagModel != "" {
		c.ModelName = flagModel
	}
}
