package preprocessing

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-navigator/geo"
	"campus-navigator/routing"
)

const networkJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Main walk"},
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [0, 0.0005], [0, 0.001]]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "MultiLineString", "coordinates": [
       [[0, 0.001], [0.0005, 0.001]],
       [[0, 0.001], [-0.0005, 0.001]],
       [[9, 9]]
     ]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Point", "coordinates": [0, 0]}}
  ]
}`

const landmarksJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"id": "library", "name": "Library",
      "navigation_phrase": "the library steps", "tour_phrase": "The library opened in 1921."},
     "geometry": {"type": "Point", "coordinates": [0.0001, 0.0005]}},
    {"type": "Feature", "id": 7, "properties": {"name": "Fountain"},
     "geometry": {"type": "Point", "coordinates": [0.0004, 0.001]}},
    {"type": "Feature", "properties": {"name": "Quad"},
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}}
  ]
}`

func TestParseNetwork(t *testing.T) {
	lines, stats, err := ParseNetwork([]byte(networkJSON))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Features)
	assert.Equal(t, 3, stats.Polylines)
	assert.Equal(t, 2, stats.Skipped)
	require.Len(t, lines, 3)
	assert.Equal(t, geo.Coordinate{Lon: 0, Lat: 0.0005}, lines[0][1])

	g := routing.BuildGraph(lines)
	assert.Len(t, g.Nodes, 5)
}

func TestParseNetworkRejectsGarbage(t *testing.T) {
	_, _, err := ParseNetwork([]byte("not json"))
	assert.Error(t, err)
}

func TestParseLandmarks(t *testing.T) {
	landmarks, err := ParseLandmarks([]byte(landmarksJSON))
	require.NoError(t, err)
	require.Len(t, landmarks, 2)

	lib := landmarks[0]
	assert.Equal(t, "library", lib.ID)
	assert.Equal(t, "Library", lib.Name)
	assert.Equal(t, "the library steps", lib.NavigationLabel())
	assert.Equal(t, "The library opened in 1921.", lib.TourPhrase)
	assert.Equal(t, geo.Coordinate{Lon: 0.0001, Lat: 0.0005}, lib.Coord)

	fountain := landmarks[1]
	assert.Equal(t, "7", fountain.ID)
	assert.Equal(t, "Fountain", fountain.NavigationLabel())
	assert.Empty(t, fountain.TourPhrase)
}

func TestParseLandmarksDuplicateID(t *testing.T) {
	data := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {"id": "a"}, "geometry": {"type": "Point", "coordinates": [0, 0]}},
	  {"type": "Feature", "properties": {"id": "a"}, "geometry": {"type": "Point", "coordinates": [1, 1]}}
	]}`
	_, err := ParseLandmarks([]byte(data))
	assert.ErrorContains(t, err, "duplicate landmark id")
}

func TestGraphCache(t *testing.T) {
	dir := t.TempDir()
	networkPath := filepath.Join(dir, "paths.geojson")
	cachePath := filepath.Join(dir, "cache", "paths.gob")
	require.NoError(t, os.WriteFile(networkPath, []byte(networkJSON), 0o644))

	built, err := ConvertNetwork(networkPath, cachePath)
	require.NoError(t, err)

	loaded, err := LoadGraph(cachePath)
	require.NoError(t, err)
	require.Equal(t, len(built.Nodes), len(loaded.Nodes))
	assert.Equal(t, built.EdgeCount(), loaded.EdgeCount())

	start, goal := geo.Coordinate{Lon: 0, Lat: 0}, geo.Coordinate{Lon: 0.0005, Lat: 0.001}
	assert.Equal(t, routing.GetRoute(built, start, goal), routing.GetRoute(loaded, start, goal))
}

type failingCloser struct {
	bytes.Buffer
	closed bool
}

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("disk full")
}

func TestWriteGraphReportsCloseError(t *testing.T) {
	g := routing.BuildGraph([]routing.Polyline{{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 0.001}}})
	w := &failingCloser{}

	err := writeGraph(g, w, "paths.gob")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to close GOB file paths.gob")
	assert.True(t, w.closed)
	assert.NotZero(t, w.Len())
}

func TestLoadOrBuildGraphWritesCache(t *testing.T) {
	dir := t.TempDir()
	networkPath := filepath.Join(dir, "paths.geojson")
	cachePath := filepath.Join(dir, "paths.gob")
	require.NoError(t, os.WriteFile(networkPath, []byte(networkJSON), 0o644))

	g, err := LoadOrBuildGraph(networkPath, cachePath)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 5)
	assert.FileExists(t, cachePath)

	again, err := LoadOrBuildGraph(networkPath, cachePath)
	require.NoError(t, err)
	assert.Len(t, again.Nodes, 5)
}

func TestLoadOrBuildGraphMissingNetwork(t *testing.T) {
	_, err := LoadOrBuildGraph(filepath.Join(t.TempDir(), "none.geojson"), "")
	assert.Error(t, err)
}
