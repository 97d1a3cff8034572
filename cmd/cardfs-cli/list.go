package main

import (
	"context"
	"os"

	"github.com/sagarc03/cardfs/clientcli"
	"github.com/spf13/cobra"
)

var listDepth int

var listCmd = &cobra.Command{
	Use:     "list [dir]",
	Aliases: []string{"ls"},
	Short:   "List the folder tree on the card",
	Long: `List the folder tree below a directory on the card.

Without a directory the mount root is listed. Folders are expanded
--depth levels deep; a negative depth uses the server default.

Examples:
  cardfs-cli list
  cardfs-cli list /sdcard/music --depth 0
  cardfs-cli list --json | jq '.nodes[].name'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listDepth, "depth", "d", -1, "folder levels to expand (negative: server default)")
}

func runList(_ *cobra.Command, args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(context.Background(), clientcli.ListOptions{
		Dir:   dir,
		Depth: listDepth,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatList(os.Stdout, result)
}
