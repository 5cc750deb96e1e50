package routing

import (
	"github.com/paulmach/orb/geojson"

	"campus-navigator/geo"
)

// RouteRequest is the body of POST /api/route. Endpoints are pointers so a missing
// field fails binding instead of decoding as (0,0).
type RouteRequest struct {
	Start *geo.Coordinate `json:"start" binding:"required"`
	End   *geo.Coordinate `json:"end" binding:"required"`
}

// RouteResponse is the map-layer view of a RouteResult.
type RouteResponse struct {
	Found       bool             `json:"found"`
	Coordinates []geo.Coordinate `json:"coordinates"`
	DistanceM   float64          `json:"distanceM"`
	Distance    string           `json:"distance"`
	Segments    int              `json:"segments"`
	Feature     *geojson.Feature `json:"feature,omitempty"`
}

func PrepareResponse(result RouteResult) RouteResponse {
	resp := RouteResponse{
		Found:       !result.Empty(),
		Coordinates: result.Coordinates,
		DistanceM:   result.DistanceM,
		Distance:    geo.FormatDistance(result.DistanceM),
	}
	if resp.Coordinates == nil {
		resp.Coordinates = []geo.Coordinate{}
	}
	if len(result.Coordinates) > 1 {
		resp.Segments = len(result.Coordinates) - 1
		resp.Feature = result.GeoJSON()
	}
	return resp
}
