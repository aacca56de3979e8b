package search

import (
	"container/heap"
	"math"

	"github.com/cortexgraph/memoryd/internal/graph"
)

// edgeCost is the cost of entering node v: traversing any edge u->v, in
// either direction, costs this much. The starting node itself contributes
// no cost.
func edgeCost(s *graph.State, v string) float64 {
	return 1 + math.Log(1+float64(s.Degree(v)))
}

// pqItem is one entry in the Dijkstra priority queue.
type pqItem struct {
	name  string
	dist  float64
	index int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index, pq[j].index = i, j
}
func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// ShortestPath runs Dijkstra from source to target treating relations as
// undirected, with the edge cost of entering v equal to
// 1 + ln(1 + degree(v)). It returns the node sequence from source to
// target, or (nil, false) if target is unreachable or the path would
// exceed maxHops edges.
//
// A binary heap drives the frontier so repeated relaxation stays
// O(log n) per update instead of re-sorting the whole frontier on every
// pop.
func ShortestPath(s *graph.State, source, target string, maxHops int) ([]string, bool) {
	if source == target {
		return []string{source}, true
	}

	dist := map[string]float64{source: 0}
	parent := map[string]string{}
	hops := map[string]int{source: 0}
	visited := map[string]bool{}

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{name: source, dist: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pqItem)
		if visited[cur.name] {
			continue
		}
		visited[cur.name] = true

		if cur.name == target {
			return reconstructPath(parent, source, target, hops[target], maxHops)
		}

		if hops[cur.name] >= maxHops {
			continue
		}

		for _, neighbor := range s.Neighbors(cur.name) {
			if visited[neighbor] {
				continue
			}
			candidate := cur.dist + edgeCost(s, neighbor)
			if existing, ok := dist[neighbor]; !ok || candidate < existing {
				dist[neighbor] = candidate
				parent[neighbor] = cur.name
				hops[neighbor] = hops[cur.name] + 1
				heap.Push(pq, &pqItem{name: neighbor, dist: candidate})
			}
		}
	}

	return nil, false
}

func reconstructPath(parent map[string]string, source, target string, hopCount, maxHops int) ([]string, bool) {
	if hopCount > maxHops {
		return nil, false
	}

	path := []string{target}
	cur := target
	for cur != source {
		p, ok := parent[cur]
		if !ok {
			return nil, false
		}
		path = append(path, p)
		cur = p
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	if len(path)-1 > maxHops {
		return nil, false
	}
	return path, true
}
