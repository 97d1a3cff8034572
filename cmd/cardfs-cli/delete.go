package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sagarc03/cardfs/clientcli"
	"github.com/spf13/cobra"
)

var (
	deleteBatch bool
	deleteStdin bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete [remote-path...]",
	Aliases: []string{"rm"},
	Short:   "Delete files or folders from the card",
	Long: `Delete one or more files or folders from the card.

Folders are removed with everything inside them. The mount root itself
cannot be deleted.

With --batch all paths are sent in one request and only the number of
deleted paths is reported. With --stdin paths are also read from standard
input, one per line; blank lines and lines starting with # are skipped.

Examples:
  cardfs-cli delete /sdcard/old.txt
  cardfs-cli delete /sdcard/tmp /sdcard/cache
  cardfs-cli delete --batch /sdcard/a.txt /sdcard/b.txt
  cardfs-cli list --json | jq -r '..|.path?' | grep '.tmp$' | cardfs-cli delete --batch --stdin`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteBatch, "batch", "b", false, "delete all paths in a single request")
	deleteCmd.Flags().BoolVar(&deleteStdin, "stdin", false, "read additional paths from stdin")
}

func runDelete(cmd *cobra.Command, args []string) error {
	paths := args
	if deleteStdin {
		more, err := readPaths(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		paths = append(paths, more...)
	}
	if len(paths) == 0 {
		return clientcli.ErrNoPaths
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.DeleteOptions{Paths: paths}

	if deleteBatch {
		result, err := client.DeleteMany(context.Background(), opts)
		if err != nil {
			return handleError(os.Stderr, err)
		}
		if err := getFormatter().FormatBatchDelete(os.Stdout, result); err != nil {
			return err
		}
		if result.Succeeded < result.Attempted {
			return &exitError{code: 1}
		}
		return nil
	}

	results, err := client.Delete(context.Background(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}

func readPaths(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	return paths, sc.Err()
}
