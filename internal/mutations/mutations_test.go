package mutations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexgraph/memoryd/internal/graph"
	"github.com/cortexgraph/memoryd/internal/types"
)

func newState() *graph.State {
	return graph.New(&types.Graph{})
}

func TestCreateEntitiesIsIdempotent(t *testing.T) {
	s := newState()
	proposed := []NewEntity{{Name: "alice", EntityType: "person", Observations: []string{"likes go"}}}

	added := CreateEntities(s, proposed)
	require.Len(t, added, 1)
	require.NotNil(t, added[0].CreatedAt)
	require.NotNil(t, added[0].UpdatedAt)

	s.Reindex()
	again := CreateEntities(s, proposed)
	assert.Empty(t, again)
	assert.Len(t, s.Entities, 1)
}

func TestCreateRelationsSkipsDuplicateTriples(t *testing.T) {
	s := newState()
	CreateEntities(s, []NewEntity{{Name: "a"}, {Name: "b"}})
	s.Reindex()

	r := types.Relation{From: "a", To: "b", RelationType: "knows"}
	added := CreateRelations(s, []types.Relation{r, r})
	require.Len(t, added, 1)
	assert.Len(t, s.Relations, 1)
}

func TestAddObservationsAllOrNothingOnMissingEntity(t *testing.T) {
	s := newState()
	CreateEntities(s, []NewEntity{{Name: "alice"}})
	s.Reindex()

	_, err := AddObservations(s, []ObservationDelta{
		{EntityName: "alice", Observations: []string{"x"}},
		{EntityName: "ghost", Observations: []string{"y"}},
	})
	require.ErrorIs(t, err, ErrEntityNotFound)

	alice, _ := s.ByName("alice")
	assert.Empty(t, alice.Observations, "nothing should be persisted when any target is missing")
}

func TestAddObservationsDoesNotDuplicateOrBumpWhenNoop(t *testing.T) {
	s := newState()
	CreateEntities(s, []NewEntity{{Name: "alice", Observations: []string{"likes go"}}})
	s.Reindex()
	alice, _ := s.ByName("alice")
	originalUpdated := *alice.UpdatedAt

	results, err := AddObservations(s, []ObservationDelta{{EntityName: "alice", Observations: []string{"likes go"}}})
	require.NoError(t, err)
	assert.Empty(t, results[0].AddedObservations)
	assert.Equal(t, originalUpdated, *alice.UpdatedAt)
	assert.Len(t, alice.Observations, 1)
}

func TestDeleteEntitiesCascadesRelations(t *testing.T) {
	s := newState()
	CreateEntities(s, []NewEntity{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	s.Reindex()
	CreateRelations(s, []types.Relation{
		{From: "a", To: "b", RelationType: "knows"},
		{From: "b", To: "c", RelationType: "knows"},
	})
	s.Reindex()

	DeleteEntities(s, []string{"b"})

	assert.Len(t, s.Entities, 2)
	for _, r := range s.Relations {
		assert.NotEqual(t, "b", r.From)
		assert.NotEqual(t, "b", r.To)
	}
	assert.Empty(t, s.Relations)
}

func TestDeleteEntitiesIgnoresMissingNames(t *testing.T) {
	s := newState()
	CreateEntities(s, []NewEntity{{Name: "a"}})
	s.Reindex()

	DeleteEntities(s, []string{"ghost"})
	assert.Len(t, s.Entities, 1)
}

func TestDeleteObservationsIgnoresMissingEntities(t *testing.T) {
	s := newState()
	DeleteObservations(s, []ObservationDelta{{EntityName: "ghost", Observations: []string{"x"}}})
}

func TestDeleteRelationsIgnoresMissingTriples(t *testing.T) {
	s := newState()
	DeleteRelations(s, []types.Relation{{From: "a", To: "b", RelationType: "knows"}})
	assert.Empty(t, s.Relations)
}
