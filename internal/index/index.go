package index

import (
	"strings"

	"github.com/cortexgraph/memoryd/internal/types"
)

// Inverted maps a token to the set of entity names whose indexed text
// contains it.
type Inverted map[string]map[string]struct{}

// Build rebuilds the inverted token index from scratch for the given
// entities. For each entity, the indexed text is the concatenation of its
// name, entity type, and every observation, separated by spaces — matching
// exactly what Tokenize is run over. The index is always built in full;
// partial/incremental updates are not supported.
func Build(entities []*types.Entity) Inverted {
	inv := make(Inverted)
	for _, e := range entities {
		for _, tok := range Tokenize(IndexedText(e)) {
			set, ok := inv[tok]
			if !ok {
				set = make(map[string]struct{})
				inv[tok] = set
			}
			set[e.Name] = struct{}{}
		}
	}
	return inv
}

// IndexedText is the text blob an entity contributes to the index and to
// substring term-frequency scoring: name, entity type, and every
// observation, space-joined.
func IndexedText(e *types.Entity) string {
	parts := make([]string, 0, len(e.Observations)+2)
	parts = append(parts, e.Name, e.EntityType)
	parts = append(parts, e.Observations...)
	return strings.Join(parts, " ")
}
