// Package cli wires configuration, the model client, the cnMaestro client
// and the tool registry into the interactive chat command.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/netwave-ai/netwave/internal/config"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "netwave",
		Short:         "cnWave network analyst chat",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          chatCmd,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	return config.LoadOrCreate(configPath)
}
