package cardfs_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sagarc03/cardfs"
	"github.com/sagarc03/cardfs/volume"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// SpyVolume wraps a real volume, counts open handles and injects failures.
type SpyVolume struct {
	cardfs.Volume

	mu          sync.Mutex
	openFiles   int
	openDirs    int
	maxOpenDirs int
	removed     []cardfs.VolumePath
	failRemove  map[cardfs.VolumePath]bool
	failCreate  bool
}

func (s *SpyVolume) OpenDir(ctx context.Context, p cardfs.VolumePath) (cardfs.DirHandle, error) {
	h, err := s.Volume.OpenDir(ctx, p)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.openDirs++
	s.maxOpenDirs = max(s.maxOpenDirs, s.openDirs)
	s.mu.Unlock()
	return &spyDir{DirHandle: h, spy: s}, nil
}

func (s *SpyVolume) Open(ctx context.Context, p cardfs.VolumePath) (fs.File, error) {
	f, err := s.Volume.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.openFiles++
	s.mu.Unlock()
	return &spyFile{File: f, spy: s}, nil
}

func (s *SpyVolume) Create(ctx context.Context, p cardfs.VolumePath) (cardfs.FileWriter, error) {
	if s.failCreate {
		return nil, os.ErrPermission
	}
	return s.Volume.Create(ctx, p)
}

func (s *SpyVolume) Remove(ctx context.Context, p cardfs.VolumePath) error {
	if s.failRemove[p] {
		return os.ErrPermission
	}
	if err := s.Volume.Remove(ctx, p); err != nil {
		return err
	}
	s.mu.Lock()
	s.removed = append(s.removed, p)
	s.mu.Unlock()
	return nil
}

func (s *SpyVolume) handles() (files, dirs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openFiles, s.openDirs
}

type spyDir struct {
	cardfs.DirHandle
	spy *SpyVolume
}

func (d *spyDir) Close() error {
	d.spy.mu.Lock()
	d.spy.openDirs--
	d.spy.mu.Unlock()
	return d.DirHandle.Close()
}

type spyFile struct {
	fs.File
	spy *SpyVolume
}

func (f *spyFile) Close() error {
	f.spy.mu.Lock()
	f.spy.openFiles--
	f.spy.mu.Unlock()
	return f.File.Close()
}

// newSpyVolume opens a temp directory as volume "0:".
func newSpyVolume(t *testing.T) (*SpyVolume, string) {
	t.Helper()
	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return &SpyVolume{
		Volume:     volume.NewLocal(root, cardfs.DefaultVolumeRoot),
		failRemove: map[cardfs.VolumePath]bool{},
	}, dir
}

func newService(t *testing.T) (*cardfs.FileService, *SpyVolume, string) {
	t.Helper()
	vol, dir := newSpyVolume(t)
	service, err := cardfs.NewFileService(vol, cardfs.ServiceConfig{})
	require.NoError(t, err, "new file service")
	return service, vol, dir
}

// writeFiles creates each file (relative, slash-separated) under dir.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

// MockVolume is a testify mock of cardfs.Volume for error paths the real
// volume cannot produce on demand.
type MockVolume struct {
	mock.Mock
}

func (m *MockVolume) Stat(ctx context.Context, p cardfs.VolumePath) (fs.FileInfo, error) {
	args := m.Called(ctx, p)
	info, _ := args.Get(0).(fs.FileInfo)
	return info, args.Error(1)
}

func (m *MockVolume) OpenDir(ctx context.Context, p cardfs.VolumePath) (cardfs.DirHandle, error) {
	args := m.Called(ctx, p)
	h, _ := args.Get(0).(cardfs.DirHandle)
	return h, args.Error(1)
}

func (m *MockVolume) Open(ctx context.Context, p cardfs.VolumePath) (fs.File, error) {
	args := m.Called(ctx, p)
	f, _ := args.Get(0).(fs.File)
	return f, args.Error(1)
}

func (m *MockVolume) Create(ctx context.Context, p cardfs.VolumePath) (cardfs.FileWriter, error) {
	args := m.Called(ctx, p)
	w, _ := args.Get(0).(cardfs.FileWriter)
	return w, args.Error(1)
}

func (m *MockVolume) Remove(ctx context.Context, p cardfs.VolumePath) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockVolume) Mkdir(ctx context.Context, p cardfs.VolumePath) error {
	return m.Called(ctx, p).Error(0)
}

// MockWriter is a testify mock of cardfs.FileWriter.
type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockWriter) Sync() error  { return m.Called().Error(0) }
func (m *MockWriter) Close() error { return m.Called().Error(0) }
