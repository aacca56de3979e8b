package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexgraph/memoryd/internal/types"
)

func TestLoadMissingFileReturnsEmptyGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.jsonl")

	g, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, g.Entities)
	assert.Empty(t, g.Relations)
}

func TestAtomicReplaceThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "memory.jsonl")

	g := &types.Graph{
		Entities: []*types.Entity{
			{Name: "alice", EntityType: "person", Observations: []string{"likes go"}},
		},
		Relations: []types.Relation{
			{From: "alice", To: "bob", RelationType: "knows"},
		},
	}

	require.NoError(t, AtomicReplace(path, g))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Entities, 1)
	assert.Equal(t, "alice", loaded.Entities[0].Name)
	require.Len(t, loaded.Relations, 1)
	assert.Equal(t, "bob", loaded.Relations[0].To)
}

func TestAtomicReplaceLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.jsonl")

	require.NoError(t, AtomicReplace(path, &types.Graph{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "memory.jsonl", entries[0].Name())
}

func TestAtomicReplaceOverwritesPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.jsonl")

	first := &types.Graph{Entities: []*types.Entity{{Name: "a", EntityType: "t"}}}
	second := &types.Graph{Entities: []*types.Entity{{Name: "b", EntityType: "t"}}}

	require.NoError(t, AtomicReplace(path, first))
	require.NoError(t, AtomicReplace(path, second))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Entities, 1)
	assert.Equal(t, "b", loaded.Entities[0].Name)
}
