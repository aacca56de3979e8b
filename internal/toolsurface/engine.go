// Package toolsurface exposes the knowledge graph as a fixed set of named
// operations consumed by the transport, translating each JSON argument
// object into a checked call against the mutation and search layers.
package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/cortexgraph/memoryd/internal/graph"
	"github.com/cortexgraph/memoryd/internal/lockfile"
	"github.com/cortexgraph/memoryd/internal/mutations"
	"github.com/cortexgraph/memoryd/internal/search"
	"github.com/cortexgraph/memoryd/internal/store"
	"github.com/cortexgraph/memoryd/internal/types"
)

// Engine binds the tool surface to one store file and one search
// configuration. It is safe for use by one goroutine at a time per spec's
// single-threaded-cooperative scheduling model; cross-process safety comes
// from the file lock, not from anything in this type.
type Engine struct {
	StorePath string
	Search    search.Config
}

// New returns an Engine ready to dispatch against storePath.
func New(storePath string, searchCfg search.Config) *Engine {
	return &Engine{StorePath: storePath, Search: searchCfg}
}

// Dispatch parses args against the named tool's expected shape and runs
// it, returning the tool's JSON-serializable result. Unknown tool names
// and malformed argument objects are reported as ErrUnknownTool /
// ErrMissingArguments respectively, without touching the store.
func (e *Engine) Dispatch(ctx context.Context, tool string, args json.RawMessage) (any, error) {
	switch tool {
	case "create_entities":
		return e.createEntities(ctx, args)
	case "create_relations":
		return e.createRelations(ctx, args)
	case "add_observations":
		return e.addObservations(ctx, args)
	case "delete_entities":
		return e.deleteEntities(ctx, args)
	case "delete_observations":
		return e.deleteObservations(ctx, args)
	case "delete_relations":
		return e.deleteRelations(ctx, args)
	case "read_graph":
		return e.readGraph()
	case "search_nodes":
		return e.searchNodes(args)
	case "open_nodes":
		return e.openNodes(args)
	default:
		return nil, unknownTool(tool)
	}
}

// withWrite acquires the store lock, loads the graph, runs mutate against
// the resulting state, and — only if mutate reports a change — serializes
// and atomically republishes the file before releasing the lock. It always
// releases the lock, on every exit path.
func (e *Engine) withWrite(ctx context.Context, mutate func(s *graph.State) (changed bool, err error)) error {
	lock, err := lockfile.Acquire(ctx, e.StorePath)
	if err != nil {
		return fmt.Errorf("toolsurface: %w", err)
	}
	defer lock.Release()

	g, err := store.Load(e.StorePath)
	if err != nil {
		return fmt.Errorf("toolsurface: load: %w", err)
	}
	s := graph.New(g)

	changed, err := mutate(s)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := store.AtomicReplace(e.StorePath, s.ToGraph()); err != nil {
		return fmt.Errorf("toolsurface: save: %w", err)
	}
	s.Reindex()
	return nil
}

func (e *Engine) loadState() (*graph.State, error) {
	g, err := store.Load(e.StorePath)
	if err != nil {
		return nil, fmt.Errorf("toolsurface: load: %w", err)
	}
	return graph.New(g), nil
}

// decodeArgs rejects raw unless it is a JSON object carrying every
// top-level key of dest's struct, then decodes it into dest.
func decodeArgs(tool string, raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		return missingArguments(tool, fmt.Errorf("empty argument object"))
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil {
		return missingArguments(tool, err)
	}
	fields := reflect.TypeOf(dest).Elem()
	for i := 0; i < fields.NumField(); i++ {
		key, _, _ := strings.Cut(fields.Field(i).Tag.Get("json"), ",")
		if _, ok := present[key]; !ok {
			return missingArguments(tool, fmt.Errorf("missing required key %q", key))
		}
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return missingArguments(tool, err)
	}
	return nil
}

func (e *Engine) createEntities(ctx context.Context, raw json.RawMessage) (any, error) {
	var args createEntitiesArgs
	if err := decodeArgs("create_entities", raw, &args); err != nil {
		return nil, err
	}

	proposed := make([]mutations.NewEntity, len(args.Entities))
	for i, a := range args.Entities {
		proposed[i] = mutations.NewEntity{Name: a.Name, EntityType: a.EntityType, Observations: a.Observations}
	}

	var added []*types.Entity
	err := e.withWrite(ctx, func(s *graph.State) (bool, error) {
		added = mutations.CreateEntities(s, proposed)
		return len(added) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (e *Engine) createRelations(ctx context.Context, raw json.RawMessage) (any, error) {
	var args createRelationsArgs
	if err := decodeArgs("create_relations", raw, &args); err != nil {
		return nil, err
	}

	proposed := make([]types.Relation, len(args.Relations))
	for i, r := range args.Relations {
		proposed[i] = types.Relation{From: r.From, To: r.To, RelationType: r.RelationType}
	}

	var added []types.Relation
	err := e.withWrite(ctx, func(s *graph.State) (bool, error) {
		added = mutations.CreateRelations(s, proposed)
		return len(added) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (e *Engine) addObservations(ctx context.Context, raw json.RawMessage) (any, error) {
	var args addObservationsArgs
	if err := decodeArgs("add_observations", raw, &args); err != nil {
		return nil, err
	}

	deltas := make([]mutations.ObservationDelta, len(args.Observations))
	for i, o := range args.Observations {
		deltas[i] = mutations.ObservationDelta{EntityName: o.EntityName, Observations: o.Contents}
	}

	var results []mutations.AddedObservations
	err := e.withWrite(ctx, func(s *graph.State) (bool, error) {
		r, err := mutations.AddObservations(s, deltas)
		if err != nil {
			return false, err
		}
		results = r
		changed := false
		for _, res := range results {
			if len(res.AddedObservations) > 0 {
				changed = true
				break
			}
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]addedObservationsResult, len(results))
	for i, r := range results {
		out[i] = addedObservationsResult{EntityName: r.EntityName, AddedObservations: r.AddedObservations}
	}
	return out, nil
}

func (e *Engine) deleteEntities(ctx context.Context, raw json.RawMessage) (any, error) {
	var args deleteEntitiesArgs
	if err := decodeArgs("delete_entities", raw, &args); err != nil {
		return nil, err
	}

	err := e.withWrite(ctx, func(s *graph.State) (bool, error) {
		before, relBefore := len(s.Entities), len(s.Relations)
		mutations.DeleteEntities(s, args.EntityNames)
		return len(s.Entities) != before || len(s.Relations) != relBefore, nil
	})
	if err != nil {
		return nil, err
	}
	return "entities deleted successfully", nil
}

func (e *Engine) deleteObservations(ctx context.Context, raw json.RawMessage) (any, error) {
	var args deleteObservationsArgs
	if err := decodeArgs("delete_observations", raw, &args); err != nil {
		return nil, err
	}

	deltas := make([]mutations.ObservationDelta, len(args.Deletions))
	for i, d := range args.Deletions {
		deltas[i] = mutations.ObservationDelta{EntityName: d.EntityName, Observations: d.Observations}
	}

	err := e.withWrite(ctx, func(s *graph.State) (bool, error) {
		applied := mutations.DeleteObservations(s, deltas)
		return applied > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return "observations deleted successfully", nil
}

func (e *Engine) deleteRelations(ctx context.Context, raw json.RawMessage) (any, error) {
	var args deleteRelationsArgs
	if err := decodeArgs("delete_relations", raw, &args); err != nil {
		return nil, err
	}

	targets := make([]types.Relation, len(args.Relations))
	for i, r := range args.Relations {
		targets[i] = types.Relation{From: r.From, To: r.To, RelationType: r.RelationType}
	}

	err := e.withWrite(ctx, func(s *graph.State) (bool, error) {
		before := len(s.Relations)
		mutations.DeleteRelations(s, targets)
		return len(s.Relations) != before, nil
	})
	if err != nil {
		return nil, err
	}
	return "relations deleted successfully", nil
}

func (e *Engine) readGraph() (any, error) {
	s, err := e.loadState()
	if err != nil {
		return nil, err
	}
	return s.ToGraph(), nil
}

func (e *Engine) searchNodes(raw json.RawMessage) (any, error) {
	var args searchNodesArgs
	if err := decodeArgs("search_nodes", raw, &args); err != nil {
		return nil, err
	}

	s, err := e.loadState()
	if err != nil {
		return nil, err
	}
	return search.ContextSearch(s, args.Query, e.Search), nil
}

func (e *Engine) openNodes(raw json.RawMessage) (any, error) {
	var args openNodesArgs
	if err := decodeArgs("open_nodes", raw, &args); err != nil {
		return nil, err
	}

	s, err := e.loadState()
	if err != nil {
		return nil, err
	}
	return search.OpenNodes(s, args.Names), nil
}
