package utils

import (
	"fmt"
	"strconv"
	"strings"

	"campus-navigator/geo"
)

// ParseCoordinate reads a "lon,lat" pair as used by CLI flags and query strings.
func ParseCoordinate(input string) (geo.Coordinate, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q: want lon,lat", input)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q: bad longitude: %w", input, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q: bad latitude: %w", input, err)
	}
	c := geo.Coordinate{Lon: lon, Lat: lat}
	if !c.Valid() {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q out of range", input)
	}
	return c, nil
}
