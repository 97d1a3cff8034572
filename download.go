package cardfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// Download is a pull-based reader over one file. Each Read returns at most
// len(p) bytes with no read-ahead. When the file is exhausted Read returns
// io.EOF and the handle is released; Close releases it early, for example
// when the client goes away.
type Download struct {
	f    fs.File
	name string
	size int64
}

// NewDownload wraps an open file. The Download takes ownership of f.
func NewDownload(f fs.File, name string, size int64) *Download {
	return &Download{f: f, name: name, size: size}
}

// Name is the attachment name presented to the client.
func (d *Download) Name() string { return d.name }

// Size is the file size at open time.
func (d *Download) Size() int64 { return d.size }

func (d *Download) Read(p []byte) (int, error) {
	if d.f == nil {
		return 0, io.EOF
	}

	n, err := d.f.Read(p)
	if err != nil {
		if cerr := d.Close(); cerr != nil && errors.Is(err, io.EOF) {
			return n, cerr
		}
	}
	return n, err
}

// Close releases the file handle. It is safe to call more than once.
func (d *Download) Close() error {
	if d.f == nil {
		return nil
	}
	f := d.f
	d.f = nil
	return f.Close()
}

// DownloadSource opens files for outbound streaming.
type DownloadSource struct {
	vol Volume
	tr  PathTranslator
}

func NewDownloadSource(vol Volume, tr PathTranslator) *DownloadSource {
	return &DownloadSource{vol: vol, tr: tr}
}

// Open translates p and opens it for reading. A missing path, or one naming
// a directory, is ErrNotFound.
func (s *DownloadSource) Open(ctx context.Context, p VirtualPath) (*Download, error) {
	f, err := s.vol.Open(ctx, s.tr.ToVolume(p))
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, ErrNotFound
	}

	return NewDownload(f, p.Base(), info.Size()), nil
}
