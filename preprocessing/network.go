package preprocessing

import (
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"campus-navigator/geo"
	"campus-navigator/routing"
)

// NetworkStats summarises a path network import.
type NetworkStats struct {
	Features  int
	Polylines int
	Skipped   int
}

// LoadNetwork reads a GeoJSON FeatureCollection of LineString and MultiLineString
// features describing walkable paths.
func LoadNetwork(path string) ([]routing.Polyline, NetworkStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NetworkStats{}, fmt.Errorf("could not read network file: %w", err)
	}
	lines, stats, err := ParseNetwork(data)
	if err != nil {
		return nil, stats, fmt.Errorf("could not parse network %s: %w", path, err)
	}
	log.Printf("Loaded path network from %s: %d features, %d polylines, %d skipped",
		path, stats.Features, stats.Polylines, stats.Skipped)
	return lines, stats, nil
}

// ParseNetwork extracts polylines from GeoJSON. Features of other geometry types and
// lines with fewer than two points are counted as skipped, not rejected.
func ParseNetwork(data []byte) ([]routing.Polyline, NetworkStats, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, NetworkStats{}, err
	}

	stats := NetworkStats{Features: len(fc.Features)}
	var lines []routing.Polyline
	add := func(ls orb.LineString) {
		if len(ls) < 2 {
			stats.Skipped++
			return
		}
		lines = append(lines, toPolyline(ls))
		stats.Polylines++
	}

	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			add(g)
		case orb.MultiLineString:
			for _, ls := range g {
				add(ls)
			}
		default:
			stats.Skipped++
		}
	}
	return lines, stats, nil
}

func toPolyline(ls orb.LineString) routing.Polyline {
	line := make(routing.Polyline, 0, len(ls))
	for _, p := range ls {
		line = append(line, geo.Coordinate{Lon: p.Lon(), Lat: p.Lat()})
	}
	return line
}
