package routing

import (
	"errors"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"campus-navigator/geo"
)

// RouteResult is an ordered walk from the snapped start to the snapped goal.
// An empty Coordinates slice means no route.
type RouteResult struct {
	Coordinates []geo.Coordinate `json:"coordinates"`
	DistanceM   float64          `json:"distanceM"`
}

// Empty reports whether the result carries no path.
func (r RouteResult) Empty() bool {
	return len(r.Coordinates) == 0
}

// Start returns the first coordinate of a non-empty route.
func (r RouteResult) Start() geo.Coordinate {
	if r.Empty() {
		return geo.Coordinate{}
	}
	return r.Coordinates[0]
}

// End returns the last coordinate of a non-empty route.
func (r RouteResult) End() geo.Coordinate {
	if r.Empty() {
		return geo.Coordinate{}
	}
	return r.Coordinates[len(r.Coordinates)-1]
}

// LineString converts the route for map layers.
func (r RouteResult) LineString() orb.LineString {
	ls := make(orb.LineString, 0, len(r.Coordinates))
	for _, c := range r.Coordinates {
		ls = append(ls, orb.Point{c.Lon, c.Lat})
	}
	return ls
}

// GeoJSON wraps the route as a LineString feature with its length as a property.
func (r RouteResult) GeoJSON() *geojson.Feature {
	f := geojson.NewFeature(r.LineString())
	f.Properties["distance_m"] = r.DistanceM
	f.Properties["distance"] = geo.FormatDistance(r.DistanceM)
	return f
}

// Router answers coordinate-to-coordinate route queries on one graph.
type Router struct {
	Graph         *Graph
	MaxExpansions int
}

func NewRouter(g *Graph, maxExpansions int) *Router {
	if maxExpansions <= 0 {
		maxExpansions = DefaultMaxExpansions
	}
	return &Router{Graph: g, MaxExpansions: maxExpansions}
}

// Route snaps both coordinates to their nearest nodes, searches a path between them
// and returns it as coordinates. Every failure degrades to an empty result.
func (r *Router) Route(start, end geo.Coordinate) RouteResult {
	startNode, _ := FindNearestNode(start, r.Graph)
	endNode, _ := FindNearestNode(end, r.Graph)
	if startNode == nil || endNode == nil {
		log.Printf("Routing skipped: %v", ErrEmptyGraph)
		return RouteResult{}
	}

	ids, err := FindPathLimit(r.Graph, startNode.ID, endNode.ID, r.MaxExpansions)
	if err != nil {
		if !errors.Is(err, ErrSearchLimit) {
			log.Printf("No route from %s to %s: %v", start, end, err)
		}
		return RouteResult{}
	}

	coords := make([]geo.Coordinate, 0, len(ids))
	for _, id := range ids {
		coords = append(coords, r.Graph.Nodes[id].Coord)
	}

	return RouteResult{
		Coordinates: coords,
		DistanceM:   geo.PathLength(coords),
	}
}

// GetRoute routes on g with the default expansion cap.
func GetRoute(g *Graph, start, end geo.Coordinate) RouteResult {
	return NewRouter(g, DefaultMaxExpansions).Route(start, end)
}
