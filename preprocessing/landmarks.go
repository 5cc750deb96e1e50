package preprocessing

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"campus-navigator/geo"
	"campus-navigator/models"
)

// LoadLandmarks reads landmarks from a GeoJSON FeatureCollection of Point features.
// Recognised properties: id, name, navigation_phrase, tour_phrase.
func LoadLandmarks(path string) ([]models.Landmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read landmarks file: %w", err)
	}
	landmarks, err := ParseLandmarks(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse landmarks %s: %w", path, err)
	}
	log.Printf("Loaded %d landmarks from %s", len(landmarks), path)
	return landmarks, nil
}

func ParseLandmarks(data []byte) ([]models.Landmark, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	landmarks := make([]models.Landmark, 0, len(fc.Features))
	seen := make(map[string]bool)
	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		coord := geo.Coordinate{Lon: p.Lon(), Lat: p.Lat()}
		if !coord.Valid() {
			continue
		}

		id := stringProperty(f.Properties, "id")
		if id == "" && f.ID != nil {
			id = fmt.Sprint(f.ID)
		}
		if id == "" {
			id = "landmark-" + strconv.Itoa(i)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate landmark id %q", id)
		}
		seen[id] = true

		landmarks = append(landmarks, models.Landmark{
			ID:               id,
			Name:             stringProperty(f.Properties, "name"),
			Coord:            coord,
			NavigationPhrase: stringProperty(f.Properties, "navigation_phrase"),
			TourPhrase:       stringProperty(f.Properties, "tour_phrase"),
		})
	}
	return landmarks, nil
}

func stringProperty(props geojson.Properties, key string) string {
	switch v := props[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
