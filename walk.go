package cardfs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
)

// DefaultListDepth is how many directory levels below the listed directory
// get expanded when the caller does not ask for a specific depth.
const DefaultListDepth = 12

// dirReadBatch bounds how many entries are pulled from a directory per read.
const dirReadBatch = 64

// TreeWalker enumerates a directory subtree into TreeNodes.
type TreeWalker struct {
	vol Volume
}

func NewTreeWalker(vol Volume) *TreeWalker {
	return &TreeWalker{vol: vol}
}

// List enumerates volumeDir, naming every node by its path under virtualDir.
// Entries keep the order the volume yields them in. Directories are expanded
// while depth > 0; at depth 0 they are reported without a Children slice.
//
// A directory that cannot be opened lists as empty. The returned slice is
// never nil.
func (w *TreeWalker) List(ctx context.Context, volumeDir VolumePath, virtualDir VirtualPath, depth uint) []TreeNode {
	entries := w.readDir(ctx, volumeDir)

	nodes := make([]TreeNode, 0, len(entries))
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		name := entry.Name()
		node := TreeNode{
			Name: name,
			Path: virtualDir.Join(name),
		}

		if entry.IsDir() {
			node.Kind = KindDir
			if depth > 0 {
				node.Children = w.List(ctx, volumeDir.Join(name), node.Path, depth-1)
			}
		} else {
			node.Kind = KindFile
			size := entrySize(entry)
			node.Size = &size
		}

		nodes = append(nodes, node)
	}

	return nodes
}

// readDir returns the entries of dir and releases the handle before
// returning, so recursion never holds more than one directory open. A read
// failure part way through is treated as the end of the directory.
func (w *TreeWalker) readDir(ctx context.Context, dir VolumePath) []fs.DirEntry {
	h, err := w.vol.OpenDir(ctx, dir)
	if err != nil {
		slog.Debug("open dir failed", "path", dir, "err", err)
		return nil
	}
	defer closeDir(h, dir)

	return drainDir(h, dir)
}

func drainDir(h DirHandle, dir VolumePath) []fs.DirEntry {
	var entries []fs.DirEntry
	for {
		batch, err := h.ReadDir(dirReadBatch)
		for _, e := range batch {
			if isPseudoEntry(e.Name()) {
				continue
			}
			entries = append(entries, e)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("read dir stopped early", "path", dir, "err", err)
			}
			return entries
		}
		if len(batch) == 0 {
			return entries
		}
	}
}

func closeDir(h DirHandle, dir VolumePath) {
	if err := h.Close(); err != nil {
		slog.Warn("failed to close dir", "path", dir, "err", err)
	}
}

func entrySize(e fs.DirEntry) uint64 {
	info, err := e.Info()
	if err != nil || info.Size() < 0 {
		return 0
	}
	return uint64(info.Size())
}

func isPseudoEntry(name string) bool {
	return name == "." || name == ".."
}
