package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/cardfs"
	"github.com/sagarc03/cardfs/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] <path1> [path2] ...",
	Short: "Delete files or folders from the volume",
	Long: `Delete files or whole folders from the volume without going through
the HTTP server. The mount root itself cannot be removed.

A single path is deleted the way GET /delete does it and fails on error.
Several paths are deleted independently, like POST /delete-multi, and
only the tally is reported.

Examples:
  # Remove a single file
  cardfs remove /sdcard/log.txt

  # Remove a folder and everything in it
  cardfs remove /sdcard/old

  # Remove several paths at once
  cardfs remove /sdcard/a.txt /sdcard/b.txt`,
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	service, closeVolume, err := openService(cfg, false)
	if err != nil {
		return err
	}
	defer closeVolume()

	if len(args) == 1 {
		path := cardfs.VirtualPath(args[0])
		deleteErr := service.Delete(ctx, path)
		switch {
		case errors.Is(deleteErr, cardfs.ErrNotFound):
			slog.Warn("not found", "path", path)
			return nil
		case deleteErr != nil:
			return fmt.Errorf("remove %s: %w", path, deleteErr)
		}
		slog.Info("removed", "path", path)
		return nil
	}

	files := make([]cardfs.VirtualPath, 0, len(args))
	tr := service.Translator()
	for _, arg := range args {
		files = append(files, tr.Normalize(arg))
	}

	out := service.DeleteMany(ctx, files)
	slog.Info("remove complete", "attempted", out.Attempted, "succeeded", out.Succeeded)
	if out.Succeeded < out.Attempted {
		return fmt.Errorf("removed %d / %d items", out.Succeeded, out.Attempted)
	}
	return nil
}
