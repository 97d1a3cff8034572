package cardfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ServiceConfig holds configuration options for FileService.
type ServiceConfig struct {
	MountRoot    VirtualPath
	VolumeRoot   VolumePath
	ListDepth    uint // depth used when a list query does not pick one (default: 12)
	MaxListDepth uint // upper bound for requested depths (default: 32)
}

// FileService implements the file management operations on top of a Volume:
// list, download, delete, upload, mkdir and batch delete. Every operation
// takes virtual paths; translation to the volume namespace happens here.
type FileService struct {
	vol       Volume
	tr        PathTranslator
	walker    *TreeWalker
	eraser    *Eraser
	downloads *DownloadSource
	listDepth uint
	maxDepth  uint
}

func NewFileService(vol Volume, cfg ServiceConfig) (*FileService, error) {
	mountRoot := cfg.MountRoot
	if mountRoot == "" {
		mountRoot = DefaultMountRoot
	}
	volumeRoot := cfg.VolumeRoot
	if volumeRoot == "" {
		volumeRoot = DefaultVolumeRoot
	}

	tr, err := NewPathTranslator(mountRoot, volumeRoot)
	if err != nil {
		return nil, fmt.Errorf("new file service: %w", err)
	}

	maxDepth := cfg.MaxListDepth
	if maxDepth == 0 {
		maxDepth = 32
	}
	listDepth := cfg.ListDepth
	if listDepth == 0 {
		listDepth = DefaultListDepth
	}
	if listDepth > maxDepth {
		return nil, fmt.Errorf("new file service: %w: list depth %d exceeds max %d", ErrInvalidInput, listDepth, maxDepth)
	}

	return &FileService{
		vol:       vol,
		tr:        tr,
		walker:    NewTreeWalker(vol),
		eraser:    NewEraser(vol),
		downloads: NewDownloadSource(vol, tr),
		listDepth: listDepth,
		maxDepth:  maxDepth,
	}, nil
}

// Translator returns the path translator the service resolves paths with.
func (s *FileService) Translator() PathTranslator { return s.tr }

// List enumerates the subtree rooted at q.Dir (the mount root when empty).
// A directory that cannot be opened lists as empty.
//
// Error types returned:
//   - ErrInvalidInput: the directory escapes the mount root or the depth exceeds the maximum
//   - context.Canceled or context.DeadlineExceeded
func (s *FileService) List(ctx context.Context, q ListQuery) ([]TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	dir := s.tr.Normalize(string(q.Dir))
	if !s.tr.Valid(dir) {
		return nil, fmt.Errorf("list %s: %w", dir, ErrInvalidInput)
	}

	depth := s.listDepth
	if q.Depth >= 0 {
		if uint(q.Depth) > s.maxDepth {
			return nil, fmt.Errorf("list %s: %w: depth %d exceeds max %d", dir, ErrInvalidInput, q.Depth, s.maxDepth)
		}
		depth = uint(q.Depth)
	}

	nodes := s.walker.List(ctx, s.tr.ToVolume(dir), dir, depth)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return nodes, nil
}

// Download opens a file for streaming. The caller owns the returned Download
// and must close it if it stops reading before io.EOF.
//
// Error types returned:
//   - ErrNotFound: the path does not exist or is a directory
//   - ErrInvalidInput: the path escapes the mount root
func (s *FileService) Download(ctx context.Context, p VirtualPath) (*Download, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	v := s.tr.Normalize(string(p))
	if !s.tr.Valid(v) {
		return nil, fmt.Errorf("download %s: %w", v, ErrInvalidInput)
	}

	slog.Debug("download requested", "input", p, "path", v)

	d, err := s.downloads.Open(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", v, err)
	}
	return d, nil
}

// Delete removes a file or a directory subtree.
//
// Error types returned:
//   - ErrForbidden: the path is the mount root
//   - ErrNotFound: the path does not exist
//   - ErrInvalidInput: the path escapes the mount root
//   - ErrInternal: the subtree could only be partly removed
func (s *FileService) Delete(ctx context.Context, p VirtualPath) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	v := s.tr.Normalize(string(p))
	slog.Info("delete requested", "input", p, "path", v)

	if s.tr.IsMountRoot(v) {
		return fmt.Errorf("delete %s: %w: cannot delete root folder", v, ErrForbidden)
	}
	if !s.tr.Valid(v) {
		return fmt.Errorf("delete %s: %w", v, ErrInvalidInput)
	}

	vp := s.tr.ToVolume(v)
	if _, err := s.vol.Stat(ctx, vp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete %s: %w", v, ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w: %w", v, ErrInternal, err)
	}

	if !s.eraser.Erase(ctx, vp) {
		return fmt.Errorf("delete %s: %w: delete failed", v, ErrInternal)
	}
	return nil
}

// NewUpload starts an upload session for filename in the directory named by
// dirHint. The session is owned by the calling request.
//
// Error types returned:
//   - ErrInvalidInput: filename is not a single valid path segment
func (s *FileService) NewUpload(dirHint, filename string) (*UploadSink, error) {
	if !IsValidName(filename) {
		return nil, fmt.Errorf("upload %q: %w: invalid file name", filename, ErrInvalidInput)
	}
	return NewUploadSink(s.vol, s.tr, dirHint, filename), nil
}

// Mkdir creates directory name inside parent. parent may be given with or
// without the mount root prefix.
//
// Error types returned:
//   - ErrInvalidInput: name is not a single valid path segment or parent escapes the mount root
//   - ErrInternal: the volume refused to create the directory
func (s *FileService) Mkdir(ctx context.Context, parent, name string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	if !IsValidName(name) {
		return fmt.Errorf("mkdir %q: %w: invalid directory name", name, ErrInvalidInput)
	}

	dir := s.tr.Normalize(parent)
	if !s.tr.Valid(dir) {
		return fmt.Errorf("mkdir %s: %w", dir, ErrInvalidInput)
	}

	target := dir.Join(name)
	slog.Info("mkdir requested", "parent", parent, "path", target)

	if err := s.vol.Mkdir(ctx, s.tr.ToVolume(target)); err != nil {
		return fmt.Errorf("mkdir %s: %w: %v", target, ErrInternal, err)
	}
	return nil
}

// DeleteMany erases every listed path independently. Paths that are not
// already under the mount root, or that name the mount root itself, are
// skipped; they still count as attempted.
func (s *FileService) DeleteMany(ctx context.Context, files []VirtualPath) DeleteOutcome {
	targets := make([]VolumePath, 0, len(files))
	for _, f := range files {
		if !s.tr.Valid(f) || s.tr.IsMountRoot(f) {
			slog.Warn("delete-many: skipping path", "path", f)
			continue
		}
		targets = append(targets, s.tr.ToVolume(f))
	}

	out := s.eraser.EraseMany(ctx, targets)
	out.Attempted = uint(len(files))

	slog.Info("delete-many complete", "attempted", out.Attempted, "succeeded", out.Succeeded)
	return out
}
