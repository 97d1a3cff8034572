package cardfs

import (
	"context"
	"io"
	"io/fs"
)

// Volume is the storage driver the file service runs on. All paths are in
// the volume's native namespace; translation happens before a Volume is
// called. Implementations return ErrNotFound when a path does not exist.
type Volume interface {
	// Stat returns metadata for p without following a final symbolic link.
	Stat(ctx context.Context, p VolumePath) (fs.FileInfo, error)

	// OpenDir opens the directory at p for enumeration. The caller must
	// close the returned handle.
	OpenDir(ctx context.Context, p VolumePath) (DirHandle, error)

	// Open opens the file at p for reading. The caller must close it.
	Open(ctx context.Context, p VolumePath) (fs.File, error)

	// Create opens the file at p for writing, truncating existing content.
	// The parent directory must already exist.
	Create(ctx context.Context, p VolumePath) (FileWriter, error)

	// Remove deletes a file or an empty directory.
	Remove(ctx context.Context, p VolumePath) error

	// Mkdir creates a single directory. The parent must already exist.
	Mkdir(ctx context.Context, p VolumePath) error
}

// DirHandle is an open directory. ReadDir follows the *os.File contract:
// with n > 0 it returns at most n entries in the order the volume yields
// them and io.EOF once the directory is exhausted.
type DirHandle interface {
	ReadDir(n int) ([]fs.DirEntry, error)
	Close() error
}

// FileWriter is a file opened for writing.
type FileWriter interface {
	io.WriteCloser
	Sync() error
}
