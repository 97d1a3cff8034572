package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/cardfs/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the server configuration file",
	// A broken config file must not stop "config init" from running.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(config.Default())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with every default value",
	Long: `Write a YAML config file holding every setting at its default value.
The file is not overwritten if it already exists.

Examples:
  cardfs config init
  cardfs config init /etc/cardfs/config.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if err := config.WriteDefault(path); err != nil {
			return fmt.Errorf("config init: %w", err)
		}

		slog.Info("wrote config", "path", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
