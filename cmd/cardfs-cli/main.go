package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sagarc03/cardfs/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	mountRoot  string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "cardfs-cli",
	Version: version,
	Short:   "Client for cardfs file servers",
	Long: `cardfs-cli - Client for the cardfs SD card file server

Paths on the card are virtual paths below the mount root, for example
/sdcard/music/track.mp3. Relative paths are taken from the mount root.

The server is chosen from, in increasing precedence:
  - the default (or --profile) profile in ~/.cardfs/config.yaml
  - CARDFS_ENDPOINT and CARDFS_MOUNT_ROOT
  - --endpoint and --mount-root`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.cardfs/config.yaml, env: CARDFS_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: CARDFS_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5708, env: CARDFS_ENDPOINT)")
	rootCmd.PersistentFlags().StringVar(&mountRoot, "mount-root", "", "mount root the server exposes (default: /sdcard, env: CARDFS_MOUNT_ROOT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// getConfigPath returns the profile file path from the flag, the
// environment or the default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from the profile file, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	profileName := profile
	if profileName == "" {
		profileName = clientcli.ProfileFromEnv()
	}

	// 1. Load from config file
	explicit := cfgFile != "" || clientcli.ConfigPathFromEnv() != "" || profileName != ""
	if configPath := getConfigPath(); configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(profileName)
			if errors.Is(profileErr, clientcli.ErrProfileNotFound) {
				return nil, fmt.Errorf("%w (available: %s)", profileErr, strings.Join(file.ProfileNames(), ", "))
			}
			if profileErr != nil && (profileName != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		case explicit:
			// Only error if the user asked for a file or profile
			return nil, err
		}
	}

	// 2. Load from environment variables
	configs = append(configs, clientcli.ConfigFromEnv())

	// 3. Load from flags
	configs = append(configs, &clientcli.Config{Endpoint: endpoint, MountRoot: mountRoot})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// handleError prints err through the formatter and returns it.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return &exitError{code: 1, err: err}
}

// exitError is returned when we want to exit with a specific code
// but don't want cobra to print an error message again.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }
