package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sagarc03/cardfs/clientcli"
	"github.com/spf13/cobra"
)

var (
	downloadOutput    string
	downloadDir       string
	downloadStdout    bool
	downloadNoClobber bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <remote-path>...",
	Short: "Download files from the card",
	Long: `Download one or more files from the card.

Each file is saved under the name the server sends, in the current
directory or the one given with --dir. A single file can be given an
explicit destination with --output, or streamed with --stdout.

Relative remote paths are resolved under the mount root.

Examples:
  cardfs-cli download notes.txt
  cardfs-cli download -o ./copy.txt /sdcard/notes.txt
  cardfs-cli download --stdout config.json | jq .
  cardfs-cli download -d ./music -n music/a.mp3 music/b.mp3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path (single file only)")
	downloadCmd.Flags().StringVarP(&downloadDir, "dir", "d", "", "directory to save into")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write the file to stdout (single file only)")
	downloadCmd.Flags().BoolVarP(&downloadNoClobber, "no-clobber", "n", false, "do not overwrite existing local files")
	downloadCmd.MarkFlagsMutuallyExclusive("output", "dir", "stdout")
}

func runDownload(_ *cobra.Command, args []string) error {
	if downloadOutput == "-" {
		downloadStdout, downloadOutput = true, ""
	}
	if len(args) > 1 && (downloadOutput != "" || downloadStdout) {
		return errors.New("--output and --stdout take a single remote path")
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	if downloadStdout {
		return downloadToStdout(client, args[0])
	}

	if downloadDir != "" {
		if err := os.MkdirAll(downloadDir, 0o750); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	failed := 0
	for _, remote := range args {
		local := downloadOutput
		if downloadDir != "" {
			local = downloadDir
		}

		result, _, err := client.Download(context.Background(), clientcli.DownloadOptions{
			RemotePath: remote,
			LocalPath:  local,
			NoClobber:  downloadNoClobber,
		})
		if err != nil {
			_ = getFormatter().FormatError(os.Stderr, fmt.Errorf("%s: %w", remote, err))
			failed++
			continue
		}
		if err := getFormatter().FormatDownload(os.Stdout, result); err != nil {
			return err
		}
	}

	if failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// downloadToStdout streams one file to stdout. Metadata goes to stderr, and
// only in JSON mode.
func downloadToStdout(client *clientcli.Client, remote string) error {
	result, body, err := client.Download(context.Background(), clientcli.DownloadOptions{
		RemotePath: remote,
		LocalPath:  "-",
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}
	defer func() { _ = body.Close() }()

	if result.Size, err = io.Copy(os.Stdout, body); err != nil {
		return err
	}
	if jsonOutput {
		return getFormatter().FormatDownload(os.Stderr, result)
	}
	return nil
}
