package cardfs_test

import (
	"encoding/json"
	"testing"

	"github.com/sagarc03/cardfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeNode_JSON(t *testing.T) {
	size := uint64(5)
	nodes := []cardfs.TreeNode{
		{Name: "a.txt", Path: "/sdcard/a.txt", Kind: cardfs.KindFile, Size: &size},
		{Name: "empty", Path: "/sdcard/empty", Kind: cardfs.KindDir, Children: []cardfs.TreeNode{}},
		{Name: "deep", Path: "/sdcard/deep", Kind: cardfs.KindDir},
	}

	data, err := json.Marshal(nodes)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"name":"a.txt","path":"/sdcard/a.txt","type":"file","size":5},
		{"name":"empty","path":"/sdcard/empty","type":"dir","children":[]},
		{"name":"deep","path":"/sdcard/deep","type":"dir"}
	]`, string(data))
}

func TestTreeNode_Predicates(t *testing.T) {
	file := cardfs.TreeNode{Kind: cardfs.KindFile}
	expanded := cardfs.TreeNode{Kind: cardfs.KindDir, Children: []cardfs.TreeNode{}}
	collapsed := cardfs.TreeNode{Kind: cardfs.KindDir}

	assert.False(t, file.IsDir())
	assert.True(t, expanded.IsDir())
	assert.True(t, expanded.Expanded())
	assert.False(t, collapsed.Expanded())
}
