package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cortexgraph/memoryd/internal/types"
)

func TestTokenizeLowercasesAndSplits(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("Hello, World!"))
}

func TestTokenizeRetainsHyphens(t *testing.T) {
	assert.Equal(t, []string{"docker-compose"}, Tokenize("docker-compose"))
}

func TestTokenizeDiscardsShortTokens(t *testing.T) {
	assert.Equal(t, []string{"cat"}, Tokenize("a an cat to"))
}

func TestTokenizeKeepsUnderscoreAsWordChar(t *testing.T) {
	assert.Equal(t, []string{"foo_bar"}, Tokenize("foo_bar"))
}

func TestBuildIndexesNameTypeAndObservations(t *testing.T) {
	entities := []*types.Entity{
		{Name: "alice", EntityType: "person", Observations: []string{"works remotely"}},
	}
	inv := Build(entities)

	for _, tok := range []string{"alice", "person", "works", "remotely"} {
		_, ok := inv[tok]["alice"]
		assert.True(t, ok, "expected token %q to index alice", tok)
	}
}

func TestBuildDedupsWithinSameEntity(t *testing.T) {
	entities := []*types.Entity{
		{Name: "alice", EntityType: "person", Observations: []string{"alice likes alice"}},
	}
	inv := Build(entities)
	assert.Len(t, inv["alice"], 1)
}
