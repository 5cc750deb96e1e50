package routing

import (
	"container/heap"
	"errors"
	"fmt"
	"log"

	"campus-navigator/geo"
)

// DefaultMaxExpansions bounds the A* search so that degenerate or very large graphs
// still terminate.
const DefaultMaxExpansions = 5000

var (
	// ErrNoPath means the goal is not reachable from the start.
	ErrNoPath = errors.New("no path found")
	// ErrSearchLimit means the search gave up after the expansion cap. It is a
	// performance signal, callers treat it like ErrNoPath.
	ErrSearchLimit = errors.New("search expansion limit reached")
	// ErrUnknownNode means a start or goal id is not in the graph.
	ErrUnknownNode = errors.New("node not in graph")
	// ErrEmptyGraph means there is nothing to snap to.
	ErrEmptyGraph = errors.New("graph has no nodes")
)

type PriorityQueueItem struct {
	NodeID   int64
	Priority float64
	Index    int
}

// PriorityQueue orders by f-score, then by node id so equal scores pop in a stable
// order regardless of map iteration.
type PriorityQueue []*PriorityQueueItem

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].Priority == pq[j].Priority {
		return pq[i].NodeID < pq[j].NodeID
	}
	return pq[i].Priority < pq[j].Priority
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*PriorityQueueItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.Index = -1
	*pq = old[0 : n-1]
	return item
}

func heuristic(g *Graph, nodeID, goalID int64) float64 {
	a, okA := g.Nodes[nodeID]
	b, okB := g.Nodes[goalID]
	if !okA || !okB {
		return 0
	}
	return geo.Distance(a.Coord, b.Coord)
}

// FindPath runs A* with the default expansion cap.
func FindPath(g *Graph, startID, goalID int64) ([]int64, error) {
	return FindPathLimit(g, startID, goalID, DefaultMaxExpansions)
}

// FindPathLimit runs A* from startID to goalID using the great-circle distance to the
// goal as heuristic. Edge costs are great-circle lengths of real segments, which are
// never shorter than the straight line, so the heuristic is admissible.
func FindPathLimit(g *Graph, startID, goalID int64, maxExpansions int) ([]int64, error) {
	if _, ok := g.Nodes[startID]; !ok {
		return nil, fmt.Errorf("start %d: %w", startID, ErrUnknownNode)
	}
	if _, ok := g.Nodes[goalID]; !ok {
		return nil, fmt.Errorf("goal %d: %w", goalID, ErrUnknownNode)
	}
	if startID == goalID {
		return []int64{startID}, nil
	}
	if maxExpansions <= 0 {
		maxExpansions = DefaultMaxExpansions
	}

	openSet := &PriorityQueue{}
	heap.Init(openSet)
	heap.Push(openSet, &PriorityQueueItem{NodeID: startID, Priority: heuristic(g, startID, goalID)})

	gScore := map[int64]float64{startID: 0}
	previous := make(map[int64]int64)
	closed := make(map[int64]bool)

	expansions := 0
	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*PriorityQueueItem).NodeID
		if current == goalID {
			return reconstructPath(previous, startID, goalID), nil
		}
		if closed[current] {
			continue
		}
		closed[current] = true

		expansions++
		if expansions > maxExpansions {
			log.Printf("WARNING: A* hit maximum expansions limit (%d) from node %d to node %d", maxExpansions, startID, goalID)
			return nil, ErrSearchLimit
		}

		for _, edge := range g.Edges[current] {
			neighbor := edge.ToID
			if closed[neighbor] {
				continue
			}
			tentative := gScore[current] + edge.Distance
			if old, ok := gScore[neighbor]; !ok || tentative < old {
				gScore[neighbor] = tentative
				previous[neighbor] = current
				heap.Push(openSet, &PriorityQueueItem{
					NodeID:   neighbor,
					Priority: tentative + heuristic(g, neighbor, goalID),
				})
			}
		}
	}

	return nil, ErrNoPath
}

func reconstructPath(previous map[int64]int64, startID, goalID int64) []int64 {
	path := []int64{goalID}
	for current := goalID; current != startID; {
		current = previous[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
