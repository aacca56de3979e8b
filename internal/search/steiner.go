package search

import "github.com/cortexgraph/memoryd/internal/graph"

// ConnectEntries runs the pairwise Steiner-tree approximation over the
// entry set: for |entries| <= 1 the connected set is just the entries,
// otherwise every unordered pair is connected with ShortestPath (hop cap
// maxHops) and every node on a returned path joins the connected set.
// Unreachable pairs contribute nothing. The connected set always contains
// every entry, even ones ShortestPath never touches (an entry with no
// in-range partner still belongs in the result).
func ConnectEntries(s *graph.State, entries []string, maxHops int) []string {
	connected := make(map[string]struct{}, len(entries))
	order := make([]string, 0, len(entries))

	add := func(name string) {
		if _, ok := connected[name]; ok {
			return
		}
		connected[name] = struct{}{}
		order = append(order, name)
	}

	for _, e := range entries {
		add(e)
	}

	if len(entries) <= 1 {
		return order
	}

	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			path, ok := ShortestPath(s, entries[i], entries[j], maxHops)
			if !ok {
				continue
			}
			for _, node := range path {
				add(node)
			}
		}
	}

	return order
}
