package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/cardfs"
	"github.com/sagarc03/cardfs/config"
)

var treeCmd = &cobra.Command{
	Use:   "tree [dir]",
	Short: "Print the volume's directory tree",
	Long: `Print the directory tree of the volume without starting the server.
The directory may be given with or without the mount root prefix.

Examples:
  # Whole card, default depth
  cardfs tree

  # One folder, two levels, as JSON
  cardfs tree /sdcard/DCIM --depth 2 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

var (
	treeDepth int
	treeJSON  bool
)

func init() {
	treeCmd.Flags().IntVar(&treeDepth, "depth", -1, "levels to expand below dir (default: list.depth)")
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "output the /list JSON document")
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	service, closeVolume, err := openService(cfg, false)
	if err != nil {
		return err
	}
	defer closeVolume()

	query := cardfs.ListQuery{Depth: treeDepth}
	if len(args) == 1 {
		query.Dir = cardfs.VirtualPath(args[0])
	}

	nodes, err := service.List(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	out := cmd.OutOrStdout()
	if treeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	}

	printTree(out, nodes, 0)
	return nil
}

func printTree(w io.Writer, nodes []cardfs.TreeNode, level int) {
	indent := strings.Repeat("  ", level)
	for _, n := range nodes {
		if n.IsDir() {
			_, _ = fmt.Fprintf(w, "%s%s/\n", indent, n.Name)
			printTree(w, n.Children, level+1)
			continue
		}
		var size uint64
		if n.Size != nil {
			size = *n.Size
		}
		_, _ = fmt.Fprintf(w, "%s%s (%d bytes)\n", indent, n.Name, size)
	}
}
