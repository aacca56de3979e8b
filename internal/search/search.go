package search

import (
	"time"

	"github.com/cortexgraph/memoryd/internal/graph"
	"github.com/cortexgraph/memoryd/internal/types"
)

// DefaultConfig holds the documented default thresholds for context search.
var DefaultConfig = Config{
	TopPerToken:      1,
	MinRelativeScore: 0.3,
	MaxPathLength:    5,
	MaxTotalNodes:    50,
}

// ContextSearch runs the full context-search pipeline: tokenize and score,
// select a diverse entry set, connect it with weighted shortest paths, and
// trim to at most cfg.MaxTotalNodes nodes (the entry set itself is never
// truncated). Relations in the result are filtered to those with both
// endpoints present.
func ContextSearch(s *graph.State, query string, cfg Config) *types.Graph {
	return ContextSearchAt(s, query, cfg, time.Now())
}

// ContextSearchAt is ContextSearch with an explicit "now", so recency
// decay is deterministic under test.
func ContextSearchAt(s *graph.State, query string, cfg Config, now time.Time) *types.Graph {
	entries := SelectEntries(s, query, cfg, now)
	if len(entries) == 0 {
		return &types.Graph{}
	}

	connected := ConnectEntries(s, entries, cfg.MaxPathLength)
	selected := finalSelection(entries, connected, cfg.MaxTotalNodes)

	return materialize(s, selected)
}

// finalSelection caps the connected set at maxTotal nodes. The entry set is
// never truncated: if it alone exceeds maxTotal, every entry is kept and no
// intermediates are added. Otherwise entries come first (for determinism),
// followed by intermediates in their discovery order until the cap.
func finalSelection(entries, connected []string, maxTotal int) []string {
	if len(connected) <= maxTotal {
		return connected
	}

	entrySet := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		entrySet[e] = struct{}{}
	}

	selected := make([]string, 0, maxTotal)
	selected = append(selected, entries...)
	if len(selected) >= maxTotal {
		return selected
	}

	room := maxTotal - len(selected)
	for _, name := range connected {
		if room == 0 {
			break
		}
		if _, isEntry := entrySet[name]; isEntry {
			continue
		}
		selected = append(selected, name)
		room--
	}
	return selected
}

// materialize builds the result graph: entities named in names (in that
// order), and every relation with both endpoints present in names.
func materialize(s *graph.State, names []string) *types.Graph {
	inResult := make(map[string]struct{}, len(names))
	g := &types.Graph{}
	for _, name := range names {
		e, ok := s.ByName(name)
		if !ok {
			continue
		}
		inResult[name] = struct{}{}
		g.Entities = append(g.Entities, e)
	}

	for _, r := range s.Relations {
		_, fromIn := inResult[r.From]
		_, toIn := inResult[r.To]
		if fromIn && toIn {
			g.Relations = append(g.Relations, r)
		}
	}
	return g
}

// OpenNodes returns the entities named (silently skipping unknown names)
// plus every relation with either endpoint in the provided set — a 1-hop
// neighborhood view, in contrast to ContextSearch's both-endpoints filter.
func OpenNodes(s *graph.State, names []string) *types.Graph {
	requested := make(map[string]struct{}, len(names))
	g := &types.Graph{}
	for _, name := range names {
		e, ok := s.ByName(name)
		if !ok {
			continue
		}
		requested[name] = struct{}{}
		g.Entities = append(g.Entities, e)
	}

	for _, r := range s.Relations {
		_, fromIn := requested[r.From]
		_, toIn := requested[r.To]
		if fromIn || toIn {
			g.Relations = append(g.Relations, r)
		}
	}
	return g
}
