package main

import (
	"context"
	"os"
	"path"

	"github.com/spf13/cobra"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <remote-dir>",
	Short: "Create a folder on the card",
	Long: `Create a folder on the card. The parent folder must exist.

Examples:
  cardfs-cli mkdir /sdcard/music
  cardfs-cli mkdir music/live`,
	Args: cobra.ExactArgs(1),
	RunE: runMkdir,
}

func runMkdir(_ *cobra.Command, args []string) error {
	target := path.Clean("/" + args[0])
	parent, name := path.Split(target)

	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.Mkdir(context.Background(), parent, name); err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatMkdir(os.Stdout, target)
}
