package clientcli_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sagarc03/cardfs"
	"github.com/sagarc03/cardfs/clientcli"
	cardfshttp "github.com/sagarc03/cardfs/http"
	"github.com/sagarc03/cardfs/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServer starts a real cardfs server over a temp volume and returns a
// client for it together with the volume directory.
func newServer(t *testing.T) (*clientcli.Client, string) {
	t.Helper()
	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	service, err := cardfs.NewFileService(volume.NewLocal(root, cardfs.DefaultVolumeRoot), cardfs.ServiceConfig{})
	require.NoError(t, err)

	server := httptest.NewServer(cardfshttp.NewHandler(&cardfshttp.HandlerConfig{ChunkSize: 16}, service).Router())
	t.Cleanup(server.Close)

	client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL})
	require.NoError(t, err)
	return client, dir
}

func writeLocal(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNew(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:5708"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5708", client.Endpoint())
	})

	t.Run("empty endpoint uses default", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)
		assert.Equal(t, clientcli.DefaultEndpoint, client.Endpoint())
	})

	t.Run("trailing slash removed", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:5708/"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5708", client.Endpoint())
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := clientcli.New(nil)
		assert.ErrorIs(t, err, clientcli.ErrConfigRequired)
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		_, err := clientcli.New(&clientcli.Config{Endpoint: "card.local"})
		assert.ErrorIs(t, err, clientcli.ErrInvalidEndpoint)
	})

	t.Run("mount root defaults", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)
		assert.Equal(t, clientcli.DefaultMountRoot, client.MountRoot())
	})
}

func TestClient_RelativePaths(t *testing.T) {
	client, volDir := newServer(t)
	writeLocal(t, filepath.Join(volDir, "music", "a.mp3"), "a")
	writeLocal(t, filepath.Join(volDir, "music", "b.mp3"), "b")
	writeLocal(t, filepath.Join(volDir, "c.txt"), "c")

	result, err := client.List(context.Background(), clientcli.ListOptions{Dir: "music/", Depth: 0})
	require.NoError(t, err)
	require.Len(t, result.Nodes, 2)

	// batch paths outside the mount root are skipped by the server
	batch, err := client.DeleteMany(context.Background(), clientcli.DeleteOptions{
		Paths: []string{"music/a.mp3", "/music/b.mp3", "c.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, &clientcli.BatchDeleteResult{Attempted: 3, Succeeded: 3}, batch)
	assert.NoFileExists(t, filepath.Join(volDir, "music", "a.mp3"))
	assert.NoFileExists(t, filepath.Join(volDir, "c.txt"))
}

func TestClient_CustomMountRoot(t *testing.T) {
	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	service, err := cardfs.NewFileService(volume.NewLocal(root, "1:"), cardfs.ServiceConfig{MountRoot: "/card", VolumeRoot: "1:"})
	require.NoError(t, err)
	server := httptest.NewServer(cardfshttp.NewHandler(&cardfshttp.HandlerConfig{}, service).Router())
	t.Cleanup(server.Close)

	client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL, MountRoot: "/card"})
	require.NoError(t, err)

	localPath := filepath.Join(t.TempDir(), "a.txt")
	writeLocal(t, localPath, "x")
	results, err := client.Upload(context.Background(), clientcli.UploadOptions{LocalPath: localPath})
	require.NoError(t, err)
	assert.Equal(t, "/card/a.txt", results[0].RemotePath)
	assert.FileExists(t, filepath.Join(dir, "a.txt"))

	batch, err := client.DeleteMany(context.Background(), clientcli.DeleteOptions{Paths: []string{"a.txt"}})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Succeeded)
}

func TestClient_Upload(t *testing.T) {
	t.Run("single file into folder", func(t *testing.T) {
		client, volDir := newServer(t)
		require.NoError(t, os.Mkdir(filepath.Join(volDir, "music"), 0o750))

		localPath := filepath.Join(t.TempDir(), "track.txt")
		writeLocal(t, localPath, "a body longer than one sixteen byte chunk")

		results, err := client.Upload(context.Background(), clientcli.UploadOptions{
			LocalPath: localPath,
			RemoteDir: "/sdcard/music",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.NoError(t, results[0].Err)
		assert.Equal(t, "/sdcard/music/track.txt", results[0].RemotePath)
		assert.Equal(t, int64(41), results[0].Size)

		data, err := os.ReadFile(filepath.Join(volDir, "music", "track.txt"))
		require.NoError(t, err)
		assert.Equal(t, "a body longer than one sixteen byte chunk", string(data))
	})

	t.Run("empty remote dir targets mount root", func(t *testing.T) {
		client, volDir := newServer(t)
		localPath := filepath.Join(t.TempDir(), "a.txt")
		writeLocal(t, localPath, "x")

		_, err := client.Upload(context.Background(), clientcli.UploadOptions{LocalPath: localPath})
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(volDir, "a.txt"))
	})

	t.Run("recursive creates folders", func(t *testing.T) {
		client, volDir := newServer(t)
		src := t.TempDir()
		writeLocal(t, filepath.Join(src, "top.txt"), "top")
		writeLocal(t, filepath.Join(src, "sub", "deep", "leaf.txt"), "leaf")

		results, err := client.Upload(context.Background(), clientcli.UploadOptions{
			LocalPath: src,
			Recursive: true,
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.NoError(t, r.Err)
		}

		data, err := os.ReadFile(filepath.Join(volDir, "sub", "deep", "leaf.txt"))
		require.NoError(t, err)
		assert.Equal(t, "leaf", string(data))
		assert.FileExists(t, filepath.Join(volDir, "top.txt"))
	})

	t.Run("missing local file", func(t *testing.T) {
		client, _ := newServer(t)
		_, err := client.Upload(context.Background(), clientcli.UploadOptions{
			LocalPath: filepath.Join(t.TempDir(), "missing"),
		})
		assert.Error(t, err)
	})

	t.Run("empty local path", func(t *testing.T) {
		client, _ := newServer(t)
		_, err := client.Upload(context.Background(), clientcli.UploadOptions{})
		assert.ErrorIs(t, err, clientcli.ErrEmptyPath)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			http.Error(w, "expected multipart", http.StatusBadRequest)
		}))
		defer server.Close()

		client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL})
		require.NoError(t, err)

		localPath := filepath.Join(t.TempDir(), "a.txt")
		writeLocal(t, localPath, "x")

		_, err = client.Upload(context.Background(), clientcli.UploadOptions{LocalPath: localPath})
		assert.ErrorIs(t, err, clientcli.ErrBadRequest)
	})
}

func TestClient_Download(t *testing.T) {
	t.Run("to named file", func(t *testing.T) {
		client, volDir := newServer(t)
		writeLocal(t, filepath.Join(volDir, "docs", "report.txt"), "quarterly numbers")

		localPath := filepath.Join(t.TempDir(), "out", "copy.txt")
		result, body, err := client.Download(context.Background(), clientcli.DownloadOptions{
			RemotePath: "/sdcard/docs/report.txt",
			LocalPath:  localPath,
		})
		require.NoError(t, err)
		assert.Nil(t, body)
		assert.Equal(t, int64(17), result.Size)

		data, err := os.ReadFile(localPath)
		require.NoError(t, err)
		assert.Equal(t, "quarterly numbers", string(data))
	})

	t.Run("name from content disposition", func(t *testing.T) {
		client, volDir := newServer(t)
		writeLocal(t, filepath.Join(volDir, "photo.jpg"), "jpeg")
		t.Chdir(t.TempDir())

		result, _, err := client.Download(context.Background(), clientcli.DownloadOptions{RemotePath: "/sdcard/photo.jpg"})
		require.NoError(t, err)
		assert.Equal(t, "photo.jpg", result.LocalPath)
		assert.FileExists(t, "photo.jpg")
	})

	t.Run("to stdout", func(t *testing.T) {
		client, volDir := newServer(t)
		writeLocal(t, filepath.Join(volDir, "a.txt"), "streamed")

		result, body, err := client.Download(context.Background(), clientcli.DownloadOptions{
			RemotePath: "/sdcard/a.txt",
			LocalPath:  "-",
		})
		require.NoError(t, err)
		require.NotNil(t, body)
		defer func() { _ = body.Close() }()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "streamed", string(data))
		assert.Equal(t, "-", result.LocalPath)
	})

	t.Run("into existing directory", func(t *testing.T) {
		client, volDir := newServer(t)
		writeLocal(t, filepath.Join(volDir, "music", "song.mp3"), "la la")
		dest := t.TempDir()

		result, _, err := client.Download(context.Background(), clientcli.DownloadOptions{
			RemotePath: "music/song.mp3",
			LocalPath:  dest,
		})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dest, "song.mp3"), result.LocalPath)
		assert.FileExists(t, filepath.Join(dest, "song.mp3"))
	})

	t.Run("no clobber keeps existing file", func(t *testing.T) {
		client, volDir := newServer(t)
		writeLocal(t, filepath.Join(volDir, "a.txt"), "remote")
		localPath := filepath.Join(t.TempDir(), "a.txt")
		writeLocal(t, localPath, "local")

		_, _, err := client.Download(context.Background(), clientcli.DownloadOptions{
			RemotePath: "/sdcard/a.txt",
			LocalPath:  localPath,
			NoClobber:  true,
		})
		require.ErrorIs(t, err, os.ErrExist)

		data, err := os.ReadFile(localPath)
		require.NoError(t, err)
		assert.Equal(t, "local", string(data))
	})

	t.Run("not found", func(t *testing.T) {
		client, _ := newServer(t)
		_, _, err := client.Download(context.Background(), clientcli.DownloadOptions{
			RemotePath: "/sdcard/missing.txt",
			LocalPath:  filepath.Join(t.TempDir(), "x"),
		})
		assert.ErrorIs(t, err, clientcli.ErrNotFound)
	})
}

func TestClient_Delete(t *testing.T) {
	client, volDir := newServer(t)
	writeLocal(t, filepath.Join(volDir, "a.txt"), "a")
	writeLocal(t, filepath.Join(volDir, "d", "nested", "b.txt"), "b")

	results, err := client.Delete(context.Background(), clientcli.DeleteOptions{
		Paths: []string{"/sdcard/a.txt", "/sdcard/d", "/sdcard/missing", "/sdcard"},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].Deleted)
	assert.True(t, results[1].Deleted)
	assert.ErrorIs(t, results[2].Err, clientcli.ErrNotFound)
	assert.ErrorIs(t, results[3].Err, clientcli.ErrForbidden)
	assert.True(t, clientcli.HasDeleteErrors(results))

	assert.NoFileExists(t, filepath.Join(volDir, "a.txt"))
	assert.NoDirExists(t, filepath.Join(volDir, "d"))
	assert.DirExists(t, volDir)

	_, err = client.Delete(context.Background(), clientcli.DeleteOptions{})
	assert.ErrorIs(t, err, clientcli.ErrNoPaths)
}

func TestClient_DeleteMany(t *testing.T) {
	client, volDir := newServer(t)
	writeLocal(t, filepath.Join(volDir, "a.txt"), "a")
	writeLocal(t, filepath.Join(volDir, "b", "c.txt"), "c")

	result, err := client.DeleteMany(context.Background(), clientcli.DeleteOptions{
		Paths: []string{"/sdcard/a.txt", "/sdcard/b", "/sdcard/ghost"},
	})
	require.NoError(t, err)
	assert.Equal(t, &clientcli.BatchDeleteResult{Attempted: 3, Succeeded: 2}, result)
	assert.NoFileExists(t, filepath.Join(volDir, "a.txt"))
	assert.NoDirExists(t, filepath.Join(volDir, "b"))

	_, err = client.DeleteMany(context.Background(), clientcli.DeleteOptions{})
	assert.ErrorIs(t, err, clientcli.ErrNoPaths)
}

func TestClient_List(t *testing.T) {
	client, volDir := newServer(t)
	writeLocal(t, filepath.Join(volDir, "a.txt"), "hello")
	writeLocal(t, filepath.Join(volDir, "d", "inner", "b.txt"), "bb")
	require.NoError(t, os.Mkdir(filepath.Join(volDir, "empty"), 0o750))

	t.Run("full tree", func(t *testing.T) {
		result, err := client.List(context.Background(), clientcli.ListOptions{Depth: -1})
		require.NoError(t, err)

		files, dirs := result.Count()
		assert.Equal(t, 2, files)
		assert.Equal(t, 3, dirs)
		assert.Equal(t, int64(7), result.TotalSize())
	})

	t.Run("depth zero lists only direct entries", func(t *testing.T) {
		result, err := client.List(context.Background(), clientcli.ListOptions{Dir: "/sdcard/d", Depth: 0})
		require.NoError(t, err)
		require.Len(t, result.Nodes, 1)
		assert.Equal(t, "inner", result.Nodes[0].Name)
		assert.True(t, result.Nodes[0].IsDir())
		assert.Empty(t, result.Nodes[0].Children)
	})
}

func TestClient_Mkdir(t *testing.T) {
	client, volDir := newServer(t)

	require.NoError(t, client.Mkdir(context.Background(), "", "photos"))
	require.NoError(t, client.Mkdir(context.Background(), "/sdcard/photos", "2026"))
	assert.DirExists(t, filepath.Join(volDir, "photos", "2026"))

	err := client.Mkdir(context.Background(), "/sdcard", "")
	assert.ErrorIs(t, err, clientcli.ErrEmptyName)

	err = client.Mkdir(context.Background(), "/sdcard", "a/b")
	assert.ErrorIs(t, err, clientcli.ErrBadRequest)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL}, clientcli.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = client.List(context.Background(), clientcli.ListOptions{Depth: -1})
	assert.Error(t, err)
}

func TestHasDeleteErrors(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		results := []clientcli.DeleteResult{
			{Path: "a.txt", Deleted: true},
			{Path: "b.txt", Deleted: true},
		}
		assert.False(t, clientcli.HasDeleteErrors(results))
	})

	t.Run("has errors", func(t *testing.T) {
		results := []clientcli.DeleteResult{
			{Path: "a.txt", Deleted: true},
			{Path: "b.txt", Deleted: false, Err: assert.AnError},
		}
		assert.True(t, clientcli.HasDeleteErrors(results))
	})

	t.Run("empty results", func(t *testing.T) {
		assert.False(t, clientcli.HasDeleteErrors([]clientcli.DeleteResult{}))
	})
}

func TestAPIError_Is(t *testing.T) {
	err := &clientcli.APIError{StatusCode: http.StatusNotFound, Body: "not found"}
	assert.ErrorIs(t, err, clientcli.ErrNotFound)
	assert.NotErrorIs(t, err, clientcli.ErrForbidden)
	assert.True(t, err.IsNotFound())
	assert.Equal(t, "server error: 404 - not found", err.Error())
}
