package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexgraph/memoryd/internal/graph"
	"github.com/cortexgraph/memoryd/internal/types"
)

func TestEmptyGraphSearchReturnsEmpty(t *testing.T) {
	s := graph.New(&types.Graph{})
	g := ContextSearch(s, "anything", DefaultConfig)
	assert.Empty(t, g.Entities)
	assert.Empty(t, g.Relations)
}

func TestEntryDiversitySelectsOnePerDistinctTerm(t *testing.T) {
	g := &types.Graph{
		Entities: []*types.Entity{
			{Name: "alpha", EntityType: "thing", Observations: []string{"golang service"}},
			{Name: "beta", EntityType: "thing", Observations: []string{"rust service"}},
		},
	}
	s := graph.New(g)

	entries := SelectEntries(s, "golang rust", DefaultConfig, time.Now())
	require.Len(t, entries, 2)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, entries)
}

func TestSearchNodesResultClosure(t *testing.T) {
	g := &types.Graph{
		Entities: []*types.Entity{
			{Name: "a", EntityType: "t", Observations: []string{"apple"}},
			{Name: "b", EntityType: "t", Observations: []string{"banana"}},
			{Name: "c", EntityType: "t", Observations: []string{"cherry"}},
		},
		Relations: []types.Relation{
			{From: "a", To: "c", RelationType: "rel"},
		},
	}
	s := graph.New(g)

	result := ContextSearch(s, "apple banana", DefaultConfig)

	names := make(map[string]struct{})
	for _, e := range result.Entities {
		names[e.Name] = struct{}{}
	}
	for _, r := range result.Relations {
		_, fromIn := names[r.From]
		_, toIn := names[r.To]
		assert.True(t, fromIn, "relation endpoint %q must be in result entities", r.From)
		assert.True(t, toIn, "relation endpoint %q must be in result entities", r.To)
	}
}

func TestOpenNodesNeighborhoodInclusion(t *testing.T) {
	g := &types.Graph{
		Entities: []*types.Entity{
			{Name: "a", EntityType: "t"},
			{Name: "b", EntityType: "t"},
			{Name: "c", EntityType: "t"},
		},
		Relations: []types.Relation{
			{From: "a", To: "b", RelationType: "rel"},
			{From: "b", To: "c", RelationType: "rel"},
		},
	}
	s := graph.New(g)

	result := OpenNodes(s, []string{"a"})

	require.Len(t, result.Entities, 1)
	require.Len(t, result.Relations, 1)
	assert.Equal(t, "a", result.Relations[0].From)
}

func TestOpenNodesSkipsUnknownNames(t *testing.T) {
	g := &types.Graph{Entities: []*types.Entity{{Name: "a", EntityType: "t"}}}
	s := graph.New(g)

	result := OpenNodes(s, []string{"a", "ghost"})
	assert.Len(t, result.Entities, 1)
}

func TestShortestPathTrivialSameNode(t *testing.T) {
	s := graph.New(&types.Graph{Entities: []*types.Entity{{Name: "a", EntityType: "t"}}})
	path, ok := ShortestPath(s, "a", "a", 5)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, path)
}

func TestShortestPathUnreachableReturnsFalse(t *testing.T) {
	g := &types.Graph{
		Entities: []*types.Entity{{Name: "a", EntityType: "t"}, {Name: "b", EntityType: "t"}},
	}
	s := graph.New(g)
	_, ok := ShortestPath(s, "a", "b", 5)
	assert.False(t, ok)
}

func TestShortestPathHonorsHopCap(t *testing.T) {
	// chain a-b-c-d-e-f: 5 hops from a to f
	g := &types.Graph{
		Entities: []*types.Entity{
			{Name: "a", EntityType: "t"}, {Name: "b", EntityType: "t"}, {Name: "c", EntityType: "t"},
			{Name: "d", EntityType: "t"}, {Name: "e", EntityType: "t"}, {Name: "f", EntityType: "t"},
		},
		Relations: []types.Relation{
			{From: "a", To: "b", RelationType: "r"},
			{From: "b", To: "c", RelationType: "r"},
			{From: "c", To: "d", RelationType: "r"},
			{From: "d", To: "e", RelationType: "r"},
			{From: "e", To: "f", RelationType: "r"},
		},
	}
	s := graph.New(g)

	_, ok := ShortestPath(s, "a", "f", 4)
	assert.False(t, ok, "5-hop path should exceed a 4-hop cap")

	path, ok := ShortestPath(s, "a", "f", 5)
	require.True(t, ok)
	assert.Len(t, path, 6)
}

func TestConnectEntriesSingleEntryIsItself(t *testing.T) {
	s := graph.New(&types.Graph{Entities: []*types.Entity{{Name: "a", EntityType: "t"}}})
	connected := ConnectEntries(s, []string{"a"}, 5)
	assert.Equal(t, []string{"a"}, connected)
}

func TestFinalSelectionNeverTruncatesEntries(t *testing.T) {
	entries := []string{"e1", "e2", "e3"}
	connected := append(append([]string{}, entries...), "i1", "i2")
	selected := finalSelection(entries, connected, 2)
	for _, e := range entries {
		assert.Contains(t, selected, e)
	}
}
