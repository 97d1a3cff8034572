package cardfs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/cardfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEraser_Erase(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		vol, dir := newSpyVolume(t)
		writeFiles(t, dir, map[string]string{"a.txt": "a"})

		assert.True(t, cardfs.NewEraser(vol).Erase(context.Background(), "0:/a.txt"))
		assert.NoFileExists(t, filepath.Join(dir, "a.txt"))
	})

	t.Run("subtree post-order", func(t *testing.T) {
		vol, dir := newSpyVolume(t)
		writeFiles(t, dir, map[string]string{
			"d/a.txt":     "a",
			"d/e/b.txt":   "b",
			"d/e/f/c.txt": "c",
			"keep.txt":    "k",
		})

		assert.True(t, cardfs.NewEraser(vol).Erase(context.Background(), "0:/d"))
		assert.NoDirExists(t, filepath.Join(dir, "d"))
		assert.FileExists(t, filepath.Join(dir, "keep.txt"))

		// every directory is removed after everything inside it
		index := map[cardfs.VolumePath]int{}
		for i, p := range vol.removed {
			index[p] = i
		}
		assert.Less(t, index["0:/d/e/f/c.txt"], index["0:/d/e/f"])
		assert.Less(t, index["0:/d/e/f"], index["0:/d/e"])
		assert.Less(t, index["0:/d/e"], index["0:/d"])
		assert.Less(t, index["0:/d/a.txt"], index["0:/d"])
		assert.Equal(t, 1, vol.maxOpenDirs)
	})

	t.Run("file and empty subdirectory", func(t *testing.T) {
		vol, dir := newSpyVolume(t)
		writeFiles(t, dir, map[string]string{"d/a.txt": "a"})
		require.NoError(t, os.Mkdir(filepath.Join(dir, "d", "sub"), 0o750))

		assert.True(t, cardfs.NewEraser(vol).Erase(context.Background(), "0:/d"))
		assert.NoDirExists(t, filepath.Join(dir, "d"))
	})

	t.Run("failing subdirectory keeps the parent", func(t *testing.T) {
		vol, dir := newSpyVolume(t)
		writeFiles(t, dir, map[string]string{"d/a.txt": "a"})
		require.NoError(t, os.Mkdir(filepath.Join(dir, "d", "sub"), 0o750))
		vol.failRemove["0:/d/sub"] = true

		assert.False(t, cardfs.NewEraser(vol).Erase(context.Background(), "0:/d"))
		assert.DirExists(t, filepath.Join(dir, "d"))
		assert.DirExists(t, filepath.Join(dir, "d", "sub"))
	})

	t.Run("missing path", func(t *testing.T) {
		vol, _ := newSpyVolume(t)
		assert.False(t, cardfs.NewEraser(vol).Erase(context.Background(), "0:/missing"))
	})

	t.Run("failure stops the walk and keeps ancestors", func(t *testing.T) {
		vol, dir := newSpyVolume(t)
		writeFiles(t, dir, map[string]string{
			"d/e/stuck.txt": "s",
		})
		vol.failRemove["0:/d/e/stuck.txt"] = true

		assert.False(t, cardfs.NewEraser(vol).Erase(context.Background(), "0:/d"))
		assert.FileExists(t, filepath.Join(dir, "d", "e", "stuck.txt"))
		assert.DirExists(t, filepath.Join(dir, "d", "e"))
		assert.DirExists(t, filepath.Join(dir, "d"))
		_, dirs := vol.handles()
		assert.Zero(t, dirs)
	})

	t.Run("deep tree", func(t *testing.T) {
		vol, dir := newSpyVolume(t)
		p := ""
		for range 64 {
			p += "n/"
		}
		writeFiles(t, dir, map[string]string{p + "leaf.txt": "x"})

		assert.True(t, cardfs.NewEraser(vol).Erase(context.Background(), "0:/n"))
		assert.NoDirExists(t, filepath.Join(dir, "n"))
	})
}

func TestEraser_EraseMany(t *testing.T) {
	vol, dir := newSpyVolume(t)
	writeFiles(t, dir, map[string]string{
		"a.txt":     "a",
		"b/c.txt":   "c",
		"stuck.txt": "s",
	})
	vol.failRemove["0:/stuck.txt"] = true

	out := cardfs.NewEraser(vol).EraseMany(context.Background(), []cardfs.VolumePath{
		"0:/a.txt", "0:/stuck.txt", "0:/missing", "0:/b",
	})

	assert.Equal(t, cardfs.DeleteOutcome{Attempted: 4, Succeeded: 2}, out)
	assert.NoFileExists(t, filepath.Join(dir, "a.txt"))
	assert.NoDirExists(t, filepath.Join(dir, "b"))
	assert.FileExists(t, filepath.Join(dir, "stuck.txt"))
}
