package main

import (
	"context"
	"os"

	"github.com/sagarc03/cardfs/clientcli"
	"github.com/spf13/cobra"
)

var uploadRecursive bool

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [remote-dir]",
	Short: "Upload files to the card",
	Long: `Upload files into a folder on the card.

Without a remote folder files land in the mount root. With -r a local
directory is walked and its folder structure recreated below remote-dir.

Examples:
  cardfs-cli upload ./notes.txt
  cardfs-cli upload ./track.mp3 /sdcard/music
  cardfs-cli upload -r ./photos /sdcard/dcim`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
}

func runUpload(_ *cobra.Command, args []string) error {
	remoteDir := ""
	if len(args) > 1 {
		remoteDir = args[1]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(context.Background(), clientcli.UploadOptions{
		LocalPath: args[0],
		RemoteDir: remoteDir,
		Recursive: uploadRecursive,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	// Check for any errors in results
	for i := range results {
		if results[i].Err != nil {
			return &exitError{code: 1}
		}
	}

	return nil
}
