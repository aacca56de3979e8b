// Package graph holds the in-memory model of the knowledge graph: the
// entity table, the relation list, and every index derived from them. The
// whole of it is rebuilt after every load or save; there is no incremental
// index maintenance.
package graph

import (
	"github.com/cortexgraph/memoryd/internal/index"
	"github.com/cortexgraph/memoryd/internal/types"
)

// State is the fully-indexed, in-memory view of a graph snapshot. The name
// map, token index, and degree map are derived data: they are owned by
// State only as references-by-name, never as a second copy of a record.
type State struct {
	Entities  []*types.Entity
	Relations []types.Relation

	byName map[string]*types.Entity
	tokens index.Inverted
	degree map[string]int
}

// New builds a State from a freshly loaded or mutated graph, running a full
// index rebuild immediately.
func New(g *types.Graph) *State {
	s := &State{
		Entities:  g.Entities,
		Relations: g.Relations,
	}
	s.Reindex()
	return s
}

// Reindex clears and repopulates every derived index from the current
// Entities/Relations slices. Call after any in-place mutation of those
// slices, and always after load/save per the store contract.
func (s *State) Reindex() {
	s.byName = make(map[string]*types.Entity, len(s.Entities))
	for _, e := range s.Entities {
		s.byName[e.Name] = e
	}

	s.tokens = index.Build(s.Entities)

	s.degree = make(map[string]int, len(s.Entities))
	for _, r := range s.Relations {
		s.degree[r.From]++
		s.degree[r.To]++
	}
}

// ToGraph returns the plain Entities/Relations pair for serialization.
func (s *State) ToGraph() *types.Graph {
	return &types.Graph{Entities: s.Entities, Relations: s.Relations}
}

// ByName looks up an entity by its unique name.
func (s *State) ByName(name string) (*types.Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// Has reports whether an entity with the given name exists.
func (s *State) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Degree returns the number of relation endpoints touching name, counting
// an entity that appears on both ends of the same relation twice.
func (s *State) Degree(name string) int {
	return s.degree[name]
}

// TokenCandidates returns the entity names whose indexed text contains the
// given token, per the inverted index built in Reindex.
func (s *State) TokenCandidates(token string) map[string]struct{} {
	return s.tokens[token]
}

// Neighbors returns the set of entity names connected to name by any
// relation, treating relations as undirected.
func (s *State) Neighbors(name string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range s.Relations {
		var other string
		switch {
		case r.From == name:
			other = r.To
		case r.To == name:
			other = r.From
		default:
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, other)
	}
	return out
}
