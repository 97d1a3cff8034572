// Package volume provides the local directory volume for cardfs. The volume
// is an already mounted directory (an SD card mount point, or any folder)
// opened as an os.Root, so no path can escape it.
package volume

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagarc03/cardfs"
)

// Local implements cardfs.Volume on a sandboxed directory.
type Local struct {
	root  *os.Root
	token cardfs.VolumePath
}

// NewLocal creates a Local volume. token is the drive token of the native
// namespace (e.g. "0:"); "0:/a/b" resolves to "a/b" under root.
func NewLocal(root *os.Root, token cardfs.VolumePath) *Local {
	return &Local{root: root, token: token}
}

// Stat returns file info without following a final symbolic link.
// Returns cardfs.ErrNotFound if the path does not exist.
func (l *Local) Stat(ctx context.Context, p cardfs.VolumePath) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := l.rel(p)
	if err != nil {
		return nil, err
	}

	info, err := l.root.Lstat(rel)
	if err != nil {
		return nil, mapErr("stat", err)
	}
	return info, nil
}

// OpenDir opens a directory for enumeration. Entries come back in the
// order the operating system yields them.
func (l *Local) OpenDir(ctx context.Context, p cardfs.VolumePath) (cardfs.DirHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := l.rel(p)
	if err != nil {
		return nil, err
	}

	f, err := l.root.Open(rel)
	if err != nil {
		return nil, mapErr("open dir", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat dir: %w", err)
	}
	if !info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open dir %s: not a directory", p)
	}

	return f, nil
}

// Open opens a file for reading. Returns cardfs.ErrNotFound if the file does not exist.
func (l *Local) Open(ctx context.Context, p cardfs.VolumePath) (fs.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := l.rel(p)
	if err != nil {
		return nil, err
	}

	f, err := l.root.Open(rel)
	if err != nil {
		return nil, mapErr("open file", err)
	}
	return f, nil
}

// Create opens a file for writing, truncating it if it exists.
func (l *Local) Create(ctx context.Context, p cardfs.VolumePath) (cardfs.FileWriter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := l.rel(p)
	if err != nil {
		return nil, err
	}

	f, err := l.root.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, mapErr("create file", err)
	}
	return f, nil
}

// Remove deletes a file or an empty directory. Returns cardfs.ErrNotFound if
// the path does not exist.
func (l *Local) Remove(ctx context.Context, p cardfs.VolumePath) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel, err := l.rel(p)
	if err != nil {
		return err
	}
	if rel == "." {
		return fmt.Errorf("remove %s: %w: volume root", p, cardfs.ErrInvalidInput)
	}

	if err := l.root.Remove(rel); err != nil {
		return mapErr("delete", err)
	}
	return nil
}

// Mkdir creates a single directory.
func (l *Local) Mkdir(ctx context.Context, p cardfs.VolumePath) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel, err := l.rel(p)
	if err != nil {
		return err
	}

	if err := l.root.Mkdir(rel, 0o755); err != nil {
		return mapErr("mkdir", err)
	}
	return nil
}

// rel converts a volume path into a path relative to the root directory.
func (l *Local) rel(p cardfs.VolumePath) (string, error) {
	rest, ok := strings.CutPrefix(string(p), string(l.token))
	if !ok {
		return "", fmt.Errorf("resolve %s: %w: not on volume %s", p, cardfs.ErrInvalidInput, l.token)
	}

	if rest == "" || rest == "/" {
		return ".", nil
	}
	if !strings.HasPrefix(rest, "/") || strings.Contains(rest, "//") {
		return "", fmt.Errorf("resolve %s: %w: malformed volume path", p, cardfs.ErrInvalidInput)
	}
	return filepath.FromSlash(strings.TrimSuffix(rest[1:], "/")), nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return cardfs.ErrNotFound
	}
	return fmt.Errorf("could not %s: %w", op, err)
}
