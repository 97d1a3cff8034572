package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/cardfs/config"
)

var version = "dev"

var configFiles []string

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "cardfs",
	Short:   "HTTP file server for a mounted SD card",
	Long: `cardfs exposes a mounted storage volume, typically an SD card, as a
browsable file tree. Clients list, download, upload and delete files
over HTTP under the /sdcard mount root.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&configFiles, "config", nil, "config file path, repeat to merge (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("storage-path", "", "volume directory (default: ./data, env: CARDFS_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("mount-root", "", "public mount root (default: /sdcard, env: CARDFS_STORAGE_MOUNT_ROOT)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: CARDFS_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json (default: json in production, env: CARDFS_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
