package cardfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

type sinkState int

const (
	sinkIdle sinkState = iota
	sinkOpen
	sinkFailed
	sinkDone
)

// UploadSink writes one inbound upload to its destination file. A sink
// belongs to exactly one request and must not be shared.
//
// The destination is resolved and opened when the chunk at offset 0
// arrives. Bytes are appended in arrival order; the offset is only used to
// spot that first chunk. The final chunk syncs and closes the file, after
// which the sink ignores further input.
//
// If the destination cannot be opened the sink discards the rest of the
// upload without reporting an error.
type UploadSink struct {
	id       uuid.UUID
	vol      Volume
	tr       PathTranslator
	dirHint  string
	filename string

	state   sinkState
	dest    VirtualPath
	w       FileWriter
	written uint64
}

// NewUploadSink prepares a sink for filename inside the directory named by
// dirHint. An empty or malformed hint puts the file in the mount root.
func NewUploadSink(vol Volume, tr PathTranslator, dirHint, filename string) *UploadSink {
	return &UploadSink{
		id:       uuid.New(),
		vol:      vol,
		tr:       tr,
		dirHint:  dirHint,
		filename: filename,
	}
}

// ID identifies the upload session in logs.
func (s *UploadSink) ID() uuid.UUID { return s.id }

// Destination is the resolved target path. It is empty until the first
// chunk arrives.
func (s *UploadSink) Destination() VirtualPath { return s.dest }

// BytesWritten is the number of bytes appended to the destination so far.
func (s *UploadSink) BytesWritten() uint64 { return s.written }

// Failed reports whether the destination could not be opened or written.
func (s *UploadSink) Failed() bool { return s.state == sinkFailed }

// Write applies one chunk. It returns an error only when the destination was
// open and a write, sync or close on it failed; the sink then discards the
// rest of the upload.
func (s *UploadSink) Write(ctx context.Context, c Chunk) error {
	if s.state == sinkDone {
		return nil
	}

	if c.Offset == 0 && s.state == sinkIdle {
		s.open(ctx)
	}

	var err error
	if s.state == sinkOpen && len(c.Data) > 0 {
		n, werr := s.w.Write(c.Data)
		s.written += uint64(n)
		if werr != nil {
			err = fmt.Errorf("upload %s: write: %w", s.dest, werr)
			s.abandon()
		}
	}

	if c.Final {
		if ferr := s.finish(); ferr != nil {
			err = errors.Join(err, ferr)
		}
	}

	return err
}

// Pump reads r to EOF and feeds it through the sink in chunks of at most
// size bytes, finishing with the final chunk. It stops at the first read or
// write error; the caller still owns the sink and must Close it.
func (s *UploadSink) Pump(ctx context.Context, r io.Reader, size int) error {
	buf := make([]byte, size)
	var offset uint64
	for {
		n, rerr := io.ReadFull(r, buf)
		final := rerr == io.EOF || rerr == io.ErrUnexpectedEOF
		if rerr != nil && !final {
			return fmt.Errorf("upload %s: read: %w", s.filename, rerr)
		}

		if err := s.Write(ctx, Chunk{Offset: offset, Data: buf[:n], Final: final}); err != nil {
			return err
		}
		offset += uint64(n)

		if final {
			return nil
		}
	}
}

// Close releases the destination handle if it is still open, for uploads
// that end without a final chunk. It is safe to call more than once.
func (s *UploadSink) Close() error {
	if s.state != sinkOpen {
		s.state = sinkDone
		return nil
	}
	s.state = sinkDone
	w := s.w
	s.w = nil
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload %s: close: %w", s.dest, err)
	}
	slog.Info("upload aborted", "session", s.id, "path", s.dest, "bytes", s.written)
	return nil
}

func (s *UploadSink) open(ctx context.Context) {
	dir := s.tr.Normalize(s.dirHint)
	if !s.tr.Valid(dir) {
		dir = s.tr.MountRoot()
	}
	s.dest = dir.Join(s.filename)

	slog.Info("upload start", "session", s.id, "file", s.filename, "path", s.dest)

	w, err := s.vol.Create(ctx, s.tr.ToVolume(s.dest))
	if err != nil {
		slog.Warn("upload open failed, discarding data", "session", s.id, "path", s.dest, "err", err)
		s.state = sinkFailed
		return
	}
	s.w = w
	s.state = sinkOpen
}

func (s *UploadSink) finish() error {
	if s.state != sinkOpen {
		s.state = sinkDone
		return nil
	}
	s.state = sinkDone
	w := s.w
	s.w = nil

	syncErr := w.Sync()
	closeErr := w.Close()
	if err := errors.Join(syncErr, closeErr); err != nil {
		return fmt.Errorf("upload %s: finish: %w", s.dest, err)
	}

	slog.Info("upload complete", "session", s.id, "path", s.dest, "bytes", s.written)
	return nil
}

// abandon closes the handle after a failed write and moves to the failed
// state so later chunks are dropped.
func (s *UploadSink) abandon() {
	if s.w != nil {
		if err := s.w.Close(); err != nil {
			slog.Warn("failed to close upload destination", "session", s.id, "path", s.dest, "err", err)
		}
		s.w = nil
	}
	s.state = sinkFailed
}
