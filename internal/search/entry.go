package search

import (
	"sort"
	"time"

	"github.com/cortexgraph/memoryd/internal/graph"
	"github.com/cortexgraph/memoryd/internal/index"
)

// Config bounds the search pipeline's tunable thresholds.
type Config struct {
	TopPerToken      int
	MinRelativeScore float64
	MaxPathLength    int
	MaxTotalNodes    int
}

// SelectEntries tokenizes query and, for each term in order, chooses up to
// Config.TopPerToken candidates not already claimed by an earlier term,
// after discarding candidates scoring below best*MinRelativeScore. The
// union of all per-term selections, in selection order, is the entry set.
func SelectEntries(s *graph.State, query string, cfg Config, now time.Time) []string {
	terms := index.Tokenize(query)

	chosen := make(map[string]struct{})
	var entries []string

	for _, term := range terms {
		candidates := scoreTerm(s, term, now)
		if len(candidates) == 0 {
			continue
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})

		best := candidates[0].score
		threshold := best * cfg.MinRelativeScore

		picked := 0
		for _, c := range candidates {
			if picked >= cfg.TopPerToken {
				break
			}
			if c.score < threshold {
				break
			}
			if _, dup := chosen[c.entity.Name]; dup {
				continue
			}
			chosen[c.entity.Name] = struct{}{}
			entries = append(entries, c.entity.Name)
			picked++
		}
	}

	return entries
}
