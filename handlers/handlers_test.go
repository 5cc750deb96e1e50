package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-navigator/config"
	"campus-navigator/geo"
	"campus-navigator/models"
	"campus-navigator/routing"
	"campus-navigator/services"
)

var (
	origin = geo.Coordinate{Lon: -73.5772, Lat: 45.5048}
	corner = geo.Destination(origin, 0, 100)
	west   = geo.Destination(corner, 270, 60)
	island = geo.Coordinate{Lon: 10, Lat: 10}
)

func testServer(t *testing.T) (*gin.Engine, *services.SessionService) {
	gin.SetMode(gin.TestMode)
	g := routing.BuildGraph([]routing.Polyline{
		{origin, corner, west},
		{island, geo.Destination(island, 0, 10)},
	})
	rs := services.NewRoutingService(g, []models.Landmark{{ID: "quad", Name: "Quad", Coord: origin}}, 0)
	ss := services.NewSessionService(config.Defaults(), rs, clock.NewMock(), nil)
	t.Cleanup(ss.Shutdown)
	return NewRouter(rs, ss), ss
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	r, _ := testServer(t)
	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 5, body["nodes"])
}

func TestRouteEndpoint(t *testing.T) {
	r, _ := testServer(t)

	w := do(r, http.MethodPost, "/api/route", routing.RouteRequest{Start: &origin, End: &west})
	require.Equal(t, http.StatusOK, w.Code)

	var resp routing.RouteResponse
	decode(t, w, &resp)
	assert.True(t, resp.Found)
	assert.Len(t, resp.Coordinates, 3)
	assert.Equal(t, 2, resp.Segments)
	assert.Equal(t, "160 m", resp.Distance)
	require.NotNil(t, resp.Feature)
}

func TestRouteEndpointNoPath(t *testing.T) {
	r, _ := testServer(t)

	w := do(r, http.MethodPost, "/api/route", routing.RouteRequest{Start: &origin, End: &island})
	require.Equal(t, http.StatusOK, w.Code)

	var resp routing.RouteResponse
	decode(t, w, &resp)
	assert.False(t, resp.Found)
	assert.Empty(t, resp.Coordinates)
}

func TestRouteQueryEndpoint(t *testing.T) {
	r, _ := testServer(t)

	path := fmt.Sprintf("/api/route?from=%f,%f&to=%f,%f", origin.Lon, origin.Lat, west.Lon, west.Lat)
	w := do(r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/route?from=nope&to=1,1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouteEndpointBadBody(t *testing.T) {
	r, _ := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/route", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouteEndpointMissingFields(t *testing.T) {
	r, _ := testServer(t)

	for _, body := range []any{
		map[string]any{},
		map[string]any{"start": origin},
		map[string]any{"end": west},
	} {
		w := do(r, http.MethodPost, "/api/route", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}
}

func TestSessionMissingFields(t *testing.T) {
	r, ss := testServer(t)

	w := do(r, http.MethodPost, "/api/sessions", map[string]any{"end": west})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, http.MethodPost, "/api/sessions", map[string]any{"start": origin})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, ss.Count())

	w = do(r, http.MethodPost, "/api/sessions", services.SessionRequest{Start: origin, End: west})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)

	w = do(r, http.MethodPut, "/api/sessions/"+created.ID+"/destination", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLandmarksEndpoint(t *testing.T) {
	r, _ := testServer(t)
	w := do(r, http.MethodGet, "/api/landmarks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Landmarks []models.Landmark `json:"landmarks"`
		Count     int               `json:"count"`
	}
	decode(t, w, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "quad", body.Landmarks[0].ID)
}

func TestSessionEndpoints(t *testing.T) {
	r, ss := testServer(t)

	w := do(r, http.MethodPost, "/api/sessions", services.SessionRequest{Start: origin, End: west, Speed: "slow", Tour: true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID    string                `json:"id"`
		Route routing.RouteResponse `json:"route"`
	}
	decode(t, w, &created)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.Route.Found)
	assert.Equal(t, 1, ss.Count())

	base := "/api/sessions/" + created.ID

	w = do(r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap map[string]any
	decode(t, w, &snap)
	assert.Equal(t, true, snap["tourMode"])

	w = do(r, http.MethodPost, base+"/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, base+"/resume", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPut, base+"/mute", map[string]bool{"muted": true})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &snap)
	assert.Equal(t, true, snap["muted"])

	w = do(r, http.MethodPost, base+"/repeat", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPut, base+"/destination", map[string]any{"end": corner})
	require.Equal(t, http.StatusOK, w.Code)
	var rerouted routing.RouteResponse
	decode(t, w, &rerouted)
	assert.Len(t, rerouted.Coordinates, 2)

	w = do(r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionCreateNoRoute(t *testing.T) {
	r, _ := testServer(t)
	w := do(r, http.MethodPost, "/api/sessions", services.SessionRequest{Start: origin, End: island})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSessionUnknownID(t *testing.T) {
	r, _ := testServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/sessions/missing"},
		{http.MethodPost, "/api/sessions/missing/pause"},
		{http.MethodDelete, "/api/sessions/missing"},
	} {
		w := do(r, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
	}
}
