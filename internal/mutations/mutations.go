// Package mutations implements the six state-changing operations on the
// knowledge graph. Every mutation here is idempotent with respect to
// duplicate inputs and is meant to be called with the store lock already
// held: it takes a *graph.State, mutates its Entities/Relations slices in
// place, and leaves re-indexing to the caller (typically the toolsurface
// layer, immediately before serialize + atomic_replace + Reindex).
package mutations

import (
	"log/slog"
	"time"

	"github.com/cortexgraph/memoryd/internal/graph"
	"github.com/cortexgraph/memoryd/internal/types"
)

// NewEntity is a proposed entity to add, missing the timestamps that
// CreateEntities assigns on success.
type NewEntity struct {
	Name         string
	EntityType   string
	Observations []string
}

// ObservationDelta names observations to add to or remove from one entity.
type ObservationDelta struct {
	EntityName   string
	Observations []string
}

// AddedObservations reports, per target entity, which observations were
// actually newly appended.
type AddedObservations struct {
	EntityName        string
	AddedObservations []string
}

func now() int64 {
	return time.Now().UnixMilli()
}

// CreateEntities appends every proposed entity whose name is not already
// present, stamping created_at and updated_at to now. Entities with a name
// already present are silently skipped (idempotent create). Returns the
// entities actually added.
func CreateEntities(s *graph.State, proposed []NewEntity) []*types.Entity {
	added := make([]*types.Entity, 0, len(proposed))
	considered := len(proposed)
	for _, p := range proposed {
		if s.Has(p.Name) {
			continue
		}
		ts := now()
		e := &types.Entity{
			Name:         p.Name,
			EntityType:   p.EntityType,
			Observations: append([]string(nil), p.Observations...),
			CreatedAt:    &ts,
			UpdatedAt:    &ts,
		}
		s.Entities = append(s.Entities, e)
		added = append(added, e)
	}
	slog.Info("mutation applied", "op", "create_entities", "considered", considered, "applied", len(added))
	return added
}

// CreateRelations appends every proposed relation whose triple is not
// already present. Duplicates are skipped silently; no referential check
// is performed against existing entities.
func CreateRelations(s *graph.State, proposed []types.Relation) []types.Relation {
	existing := make(map[[3]string]struct{}, len(s.Relations))
	for _, r := range s.Relations {
		existing[r.Triple()] = struct{}{}
	}

	added := make([]types.Relation, 0, len(proposed))
	for _, r := range proposed {
		t := r.Triple()
		if _, dup := existing[t]; dup {
			continue
		}
		existing[t] = struct{}{}
		s.Relations = append(s.Relations, r)
		added = append(added, r)
	}
	slog.Info("mutation applied", "op", "create_relations", "considered", len(proposed), "applied", len(added))
	return added
}

// AddObservations appends, for each target whose entity exists, any
// observations not already present, bumping updated_at when at least one
// was actually added. If any target names an entity that does not exist,
// the whole operation fails with ErrEntityNotFound: nothing is mutated.
func AddObservations(s *graph.State, deltas []ObservationDelta) ([]AddedObservations, error) {
	for _, d := range deltas {
		if !s.Has(d.EntityName) {
			return nil, ErrEntityNotFound
		}
	}

	results := make([]AddedObservations, 0, len(deltas))
	for _, d := range deltas {
		e, _ := s.ByName(d.EntityName)
		var added []string
		for _, obs := range d.Observations {
			if e.HasObservation(obs) {
				continue
			}
			e.Observations = append(e.Observations, obs)
			added = append(added, obs)
		}
		if len(added) > 0 {
			ts := now()
			e.UpdatedAt = &ts
		}
		results = append(results, AddedObservations{EntityName: d.EntityName, AddedObservations: added})
	}
	slog.Info("mutation applied", "op", "add_observations", "considered", len(deltas), "applied", len(results))
	return results, nil
}

// DeleteEntities removes every entity whose name is listed, along with
// every relation touching any of them. Missing names are ignored.
func DeleteEntities(s *graph.State, names []string) {
	toDelete := make(map[string]struct{}, len(names))
	for _, n := range names {
		toDelete[n] = struct{}{}
	}

	remainingEntities := s.Entities[:0]
	removedEntities := 0
	for _, e := range s.Entities {
		if _, dead := toDelete[e.Name]; dead {
			removedEntities++
			continue
		}
		remainingEntities = append(remainingEntities, e)
	}
	s.Entities = remainingEntities

	remainingRelations := s.Relations[:0]
	removedRelations := 0
	for _, r := range s.Relations {
		_, fromDead := toDelete[r.From]
		_, toDead := toDelete[r.To]
		if fromDead || toDead {
			removedRelations++
			continue
		}
		remainingRelations = append(remainingRelations, r)
	}
	s.Relations = remainingRelations

	slog.Info("mutation applied", "op", "delete_entities", "considered", len(names),
		"entities_removed", removedEntities, "relations_cascaded", removedRelations)
}

// DeleteObservations removes, for each target that exists, the listed
// observations; if any were actually removed, updated_at is bumped.
// Missing entities are ignored. Returns the number of targets that had at
// least one observation actually removed.
func DeleteObservations(s *graph.State, deltas []ObservationDelta) int {
	applied := 0
	for _, d := range deltas {
		e, ok := s.ByName(d.EntityName)
		if !ok {
			continue
		}
		toRemove := make(map[string]struct{}, len(d.Observations))
		for _, obs := range d.Observations {
			toRemove[obs] = struct{}{}
		}

		kept := e.Observations[:0]
		removed := false
		for _, obs := range e.Observations {
			if _, dead := toRemove[obs]; dead {
				removed = true
				continue
			}
			kept = append(kept, obs)
		}
		e.Observations = kept

		if removed {
			ts := now()
			e.UpdatedAt = &ts
			applied++
		}
	}
	slog.Info("mutation applied", "op", "delete_observations", "considered", len(deltas), "applied", applied)
	return applied
}

// DeleteRelations removes every relation whose triple is listed. Missing
// triples are ignored.
func DeleteRelations(s *graph.State, targets []types.Relation) {
	toDelete := make(map[[3]string]struct{}, len(targets))
	for _, r := range targets {
		toDelete[r.Triple()] = struct{}{}
	}

	remaining := s.Relations[:0]
	removed := 0
	for _, r := range s.Relations {
		if _, dead := toDelete[r.Triple()]; dead {
			removed++
			continue
		}
		remaining = append(remaining, r)
	}
	s.Relations = remaining

	slog.Info("mutation applied", "op", "delete_relations", "considered", len(targets), "applied", removed)
}
