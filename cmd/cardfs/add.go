package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/cardfs"
	"github.com/sagarc03/cardfs/config"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <file1> [file2] ...",
	Short: "Copy local files onto the volume",
	Long: `Copy files from local paths onto the volume without going through
the HTTP server. Files are written the same way uploads are.

Examples:
  # Add a single file to the mount root
  cardfs add /path/to/file.txt

  # Add into a folder on the card
  cardfs add --dest /sdcard/music song.mp3

  # Add a directory recursively, creating folders as needed
  cardfs add -r /path/to/photos`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDest      string
	addRecursive bool
	addQuiet     bool
)

func init() {
	addCmd.Flags().StringVarP(&addDest, "dest", "d", "", "destination directory on the volume (default: mount root)")
	addCmd.Flags().BoolVarP(&addRecursive, "recursive", "r", false, "recursively add directories")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(addCmd)
}

// fileEntry represents a file to be added with its source path and the
// destination directory below --dest, as slash-separated segments.
type fileEntry struct {
	sourcePath string
	destDir    string
}

func runAdd(cmd *cobra.Command, args []string) error {
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

	// Collect files from all arguments
	var files []fileEntry
	for _, arg := range args {
		entries, collectErr := collectFiles(arg, addRecursive)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, entries...)
	}

	if len(files) == 0 {
		slog.Info("no files to add")
		return nil
	}

	base := service.Translator().Normalize(addDest)
	created := make(map[cardfs.VirtualPath]bool)
	added := 0

	for _, entry := range files {
		dir := base
		if entry.destDir != "" {
			for seg := range strings.SplitSeq(entry.destDir, "/") {
				parent := dir
				dir = dir.Join(seg)
				if created[dir] {
					continue
				}
				// an existing directory fails mkdir; the upload below reports a real problem
				if mkErr := service.Mkdir(ctx, string(parent), seg); mkErr != nil {
					slog.Debug("mkdir skipped", "path", dir, "err", mkErr)
				}
				created[dir] = true
			}
		}

		if err := addFile(cmd, service, entry.sourcePath, dir, cfg.Server.ChunkSize); err != nil {
			return err
		}
		added++
	}

	slog.Info("add complete", "added", added)
	return nil
}

func addFile(cmd *cobra.Command, service *cardfs.FileService, source string, dir cardfs.VirtualPath, chunkSize int) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer func() { _ = f.Close() }()

	sink, err := service.NewUpload(string(dir), filepath.Base(source))
	if err != nil {
		return fmt.Errorf("add %s: %w", source, err)
	}
	defer func() { _ = sink.Close() }()

	if err := sink.Pump(cmd.Context(), f, chunkSize); err != nil {
		return fmt.Errorf("add %s: %w", source, err)
	}
	if sink.Failed() {
		return fmt.Errorf("add %s: could not write %s", source, sink.Destination())
	}

	if !addQuiet {
		slog.Info("added", "path", sink.Destination(), "bytes", sink.BytesWritten())
	}
	return nil
}

// collectFiles gathers files from a path, optionally recursively.
func collectFiles(path string, recursive bool) ([]fileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []fileEntry{{sourcePath: path}}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to add recursively)", path)
	}

	top := filepath.Base(filepath.Clean(path))

	var entries []fileEntry
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			return nil
		}

		relPath, relErr := filepath.Rel(path, filepath.Dir(walkPath))
		if relErr != nil {
			return relErr
		}

		destDir := top
		if relPath != "." {
			destDir += "/" + filepath.ToSlash(relPath)
		}

		entries = append(entries, fileEntry{
			sourcePath: walkPath,
			destDir:    destDir,
		})
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	return entries, nil
}
