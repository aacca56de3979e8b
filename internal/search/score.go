// Package search implements context search: scoring candidates for a
// free-text query, selecting a diverse entry set, connecting that set with
// weighted shortest paths, and trimming the result to a bounded node cap.
package search

import (
	"math"
	"strings"
	"time"

	"github.com/cortexgraph/memoryd/internal/graph"
	"github.com/cortexgraph/memoryd/internal/index"
	"github.com/cortexgraph/memoryd/internal/types"
)

// recencyHalfLife is the time constant (not a half-life in the strict
// sense, but the decay denominator) for the exponential recency factor.
const recencyHalfLife = 30 * 24 * time.Hour

// candidateScore is one entity's score against one query term.
type candidateScore struct {
	entity *types.Entity
	score  float64
}

// scoreTerm scores every entity in the inverted index for term against the
// given term, per the tf * importance * recency formula. now is passed in
// rather than read from time.Now() so scoring is deterministic under test.
func scoreTerm(s *graph.State, term string, now time.Time) []candidateScore {
	names := s.TokenCandidates(term)
	if len(names) == 0 {
		return nil
	}

	out := make([]candidateScore, 0, len(names))
	for name := range names {
		e, ok := s.ByName(name)
		if !ok {
			continue
		}
		out = append(out, candidateScore{entity: e, score: score(s, e, term, now)})
	}
	return out
}

func score(s *graph.State, e *types.Entity, term string, now time.Time) float64 {
	f := strings.Count(strings.ToLower(index.IndexedText(e)), term)
	tf := 1 + math.Log(1+float64(f))

	obs := float64(len(e.Observations))
	deg := float64(s.Degree(e.Name))
	importance := math.Log(obs+1) * (1 + math.Log(1+deg))

	recency := 1.0
	if e.UpdatedAt != nil {
		updated := time.UnixMilli(*e.UpdatedAt)
		age := now.Sub(updated)
		recency = math.Exp(-float64(age) / float64(recencyHalfLife))
	}

	return tf * importance * recency
}
