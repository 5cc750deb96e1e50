package routing

import (
	"math"

	"campus-navigator/geo"
)

// coordScale quantizes coordinates to 1e-7 degrees (about a centimeter) when deriving
// node ids, so endpoints shared by several path segments collapse onto one node.
const coordScale = 1e7

// Node represents a vertex of the walking network
type Node struct {
	ID    int64          // Derived from Coord, see NodeID
	Coord geo.Coordinate // Position in degrees
}

// Edge represents one direction of a walkable segment
type Edge struct {
	FromID   int64   // ID of the starting node
	ToID     int64   // ID of the ending node
	Distance float64 // Great-circle length in meters
}

// Graph is an undirected network stored as symmetric directed edges.
type Graph struct {
	Nodes map[int64]*Node   // Map of node IDs to node objects
	Edges map[int64][]*Edge // Map of node IDs to outgoing edges
}

// Polyline is an ordered list of coordinates describing one walkable path.
type Polyline []geo.Coordinate

func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[int64]*Node),
		Edges: make(map[int64][]*Edge),
	}
}

// NodeID derives a node identity from its coordinate.
func NodeID(c geo.Coordinate) int64 {
	lon := int64(math.Round(c.Lon * coordScale))
	lat := int64(math.Round(c.Lat * coordScale))
	return lon<<32 | (lat & 0xffffffff)
}

// BuildGraph interns every consecutive coordinate pair of every polyline as a pair of
// symmetric edges. Malformed polylines are skipped.
func BuildGraph(lines []Polyline) *Graph {
	g := NewGraph()
	for _, line := range lines {
		g.AddPolyline(line)
	}
	return g
}

// AddPolyline adds one polyline to the graph and reports whether it was usable.
// Polylines with fewer than two points or any invalid coordinate are rejected whole;
// zero-length pairs inside an otherwise valid polyline are ignored.
func (g *Graph) AddPolyline(line Polyline) bool {
	if len(line) < 2 {
		return false
	}
	for _, c := range line {
		if !c.Valid() {
			return false
		}
	}

	for i := 1; i < len(line); i++ {
		from := g.intern(line[i-1])
		to := g.intern(line[i])
		if from.ID == to.ID {
			continue
		}
		g.addEdge(from, to)
	}
	return true
}

func (g *Graph) intern(c geo.Coordinate) *Node {
	id := NodeID(c)
	if n, ok := g.Nodes[id]; ok {
		return n
	}
	n := &Node{ID: id, Coord: c}
	g.Nodes[id] = n
	return n
}

func (g *Graph) addEdge(a, b *Node) {
	d := geo.Distance(a.Coord, b.Coord)
	g.Edges[a.ID] = append(g.Edges[a.ID], &Edge{FromID: a.ID, ToID: b.ID, Distance: d})
	g.Edges[b.ID] = append(g.Edges[b.ID], &Edge{FromID: b.ID, ToID: a.ID, Distance: d})
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.Edges {
		n += len(edges)
	}
	return n
}

// FindNearestNode snaps coord to the closest graph vertex by linear scan. It returns
// nil on an empty graph. Only vertices are considered, never points inside an edge, so
// the snapping error grows with the spacing between nodes. Exact ties resolve to the
// lowest node id.
func FindNearestNode(coord geo.Coordinate, g *Graph) (*Node, float64) {
	if g == nil {
		return nil, math.Inf(1)
	}
	var nearest *Node
	minDistance := math.Inf(1)

	for _, node := range g.Nodes {
		dist := geo.Distance(coord, node.Coord)
		if dist < minDistance || (dist == minDistance && nearest != nil && node.ID < nearest.ID) {
			minDistance = dist
			nearest = node
		}
	}

	return nearest, minDistance
}
