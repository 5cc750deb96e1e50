package narration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-navigator/config"
	"campus-navigator/geo"
	"campus-navigator/models"
	"campus-navigator/simulation"
	"campus-navigator/speech"
)

// recorder accepts every request and keeps it active until finish is called.
type recorder struct {
	spoken  []speech.Request
	active  *speech.Request
	stopped []string
}

func (r *recorder) Speak(req speech.Request) bool {
	if r.active != nil && r.active.Priority == speech.Navigation && req.Priority == speech.Tour {
		return false
	}
	r.spoken = append(r.spoken, req)
	r.active = &req
	return true
}

func (r *recorder) IsSpeaking() bool { return r.active != nil }

func (r *recorder) StopKey(key string) bool {
	if r.active == nil || r.active.Key != key {
		return false
	}
	r.stopped = append(r.stopped, key)
	r.active = nil
	return true
}

func (r *recorder) finish() { r.active = nil }

func (r *recorder) texts() []string {
	out := make([]string, 0, len(r.spoken))
	for _, req := range r.spoken {
		out = append(out, req.Text)
	}
	return out
}

var origin = geo.Coordinate{Lon: -73.5772, Lat: 45.5048}

func at(bearing, meters float64) geo.Coordinate {
	return geo.Destination(origin, bearing, meters)
}

func TestVisitedSet(t *testing.T) {
	var v VisitedSet
	assert.False(t, v.HasVisited("a"))
	v.Mark("a")
	v.Mark("a")
	assert.True(t, v.HasVisited("a"))
	assert.Equal(t, 1, v.Len())
	v.Reset()
	assert.False(t, v.HasVisited("a"))
	assert.Zero(t, v.Len())
}

func TestTourWelcomeComesFirst(t *testing.T) {
	lib := models.Landmark{ID: "library", Name: "Library", Coord: origin, TourPhrase: "The library opened in 1921."}
	tour := NewTourSynthesizer(config.DefaultGuidance(), []models.Landmark{lib}, nil, "Welcome.")
	rec := &recorder{}

	tour.Update(origin, rec)
	tour.Update(origin, rec)
	assert.Equal(t, []string{"Welcome."}, rec.texts(), "landmark waits while the welcome plays")

	rec.finish()
	tour.Update(origin, rec)
	assert.Equal(t, []string{"Welcome.", "The library opened in 1921."}, rec.texts())
	assert.Equal(t, speech.Tour, rec.spoken[1].Priority)
}

func TestTourNeverRepeatsALandmark(t *testing.T) {
	lib := models.Landmark{ID: "library", Coord: origin, TourPhrase: "The library opened in 1921."}
	tour := NewTourSynthesizer(config.DefaultGuidance(), []models.Landmark{lib}, nil, "")
	rec := &recorder{}

	for i := 0; i < 3; i++ {
		tour.Update(at(0, 5), rec)
		rec.finish()
		tour.Update(at(0, 200), rec)
		tour.Update(at(180, 3), rec)
		rec.finish()
	}
	assert.Equal(t, []string{"The library opened in 1921."}, rec.texts())

	tour.Reset()
	tour.Update(origin, rec)
	assert.Len(t, rec.spoken, 2, "reset makes the landmark eligible again")
}

func TestTourOutsideTriggerRadius(t *testing.T) {
	lib := models.Landmark{ID: "library", Coord: origin, TourPhrase: "Story."}
	tour := NewTourSynthesizer(config.DefaultGuidance(), []models.Landmark{lib}, nil, "")
	rec := &recorder{}

	tour.Update(at(90, 11), rec)
	assert.Empty(t, rec.spoken)
	tour.Update(at(90, 9), rec)
	assert.Len(t, rec.spoken, 1)
}

func TestTourIgnoresLandmarksWithoutStory(t *testing.T) {
	plain := models.Landmark{ID: "gate", Name: "Gate", Coord: origin}
	tour := NewTourSynthesizer(config.DefaultGuidance(), []models.Landmark{plain}, nil, "")
	rec := &recorder{}
	tour.Update(origin, rec)
	assert.Empty(t, rec.spoken)
}

func TestTourWaitsWhileChannelBusy(t *testing.T) {
	lib := models.Landmark{ID: "library", Coord: origin, TourPhrase: "Story."}
	tour := NewTourSynthesizer(config.DefaultGuidance(), []models.Landmark{lib}, nil, "")
	rec := &recorder{}
	rec.Speak(speech.Request{Text: "Turn left now", Priority: speech.Navigation})

	tour.Update(origin, rec)
	assert.Len(t, rec.spoken, 1)

	rec.finish()
	tour.Update(origin, rec)
	assert.Equal(t, "Story.", rec.spoken[1].Text)
}

func TestTourStopsWhenWalkingAway(t *testing.T) {
	lib := models.Landmark{ID: "library", Coord: origin, TourPhrase: "Library story."}
	quad := models.Landmark{ID: "quad", Coord: at(90, 120), TourPhrase: "Quad story."}
	tour := NewTourSynthesizer(config.DefaultGuidance(), []models.Landmark{lib, quad}, nil, "")
	rec := &recorder{}

	tour.Update(origin, rec)
	require.True(t, rec.IsSpeaking())

	// beyond the leave radius, but the library is still the nearest story
	tour.Update(at(90, 55), rec)
	assert.Empty(t, rec.stopped)
	assert.True(t, rec.IsSpeaking())

	tour.Update(at(90, 70), rec)
	assert.Equal(t, []string{"tour:library"}, rec.stopped)
	assert.False(t, rec.IsSpeaking())
}

func TestTourVisitedLandmarkDoesNotHideNeighbour(t *testing.T) {
	a := models.Landmark{ID: "a", Coord: origin, TourPhrase: "A story."}
	b := models.Landmark{ID: "b", Coord: at(90, 6), TourPhrase: "B story."}
	tour := NewTourSynthesizer(config.DefaultGuidance(), []models.Landmark{a, b}, nil, "")
	rec := &recorder{}

	tour.Update(origin, rec)
	rec.finish()

	// 2 m from A, 4 m from B
	for i := 0; i < 5; i++ {
		tour.Update(at(90, 2), rec)
	}
	assert.Equal(t, []string{"A story.", "B story."}, rec.texts())
	assert.Empty(t, rec.stopped)
}

func TestTourRepeatLast(t *testing.T) {
	lib := models.Landmark{ID: "library", Coord: origin, TourPhrase: "Library story."}
	tour := NewTourSynthesizer(config.DefaultGuidance(), []models.Landmark{lib}, nil, "")
	rec := &recorder{}

	assert.False(t, tour.RepeatLast(rec))
	tour.Update(origin, rec)
	rec.finish()

	assert.True(t, tour.RepeatLast(rec))
	assert.Equal(t, []string{"Library story.", "Library story."}, rec.texts())
	last, ok := tour.LastNarration()
	require.True(t, ok)
	assert.Equal(t, "Library story.", last)
}

func turnAhead(m geo.Maneuver, corner geo.Coordinate, meters float64) simulation.Instruction {
	return simulation.Instruction{
		Maneuver:  m,
		Text:      m.Label(),
		At:        corner,
		DistanceM: meters,
	}
}

func TestNavigationFallbackBands(t *testing.T) {
	nav := NewNavigationSynthesizer(config.DefaultGuidance(), nil, nil, "")
	rec := &recorder{}
	corner := at(0, 100)

	for _, d := range []float64{60, 40, 34.2, 30, 20, 13} {
		nav.Update(geo.Destination(corner, 180, d), turnAhead(geo.TurnLeft, corner, d), rec)
	}
	for _, d := range []float64{12, 8, 2} {
		nav.Update(geo.Destination(corner, 180, d), turnAhead(geo.TurnLeft, corner, d), rec)
	}
	assert.Equal(t, []string{"Turn left in 35 meters", "Turn left now"}, rec.texts())
	assert.Equal(t, speech.Navigation, rec.spoken[0].Priority)
}

func TestNavigationExecuteSuppressesLatePrepare(t *testing.T) {
	nav := NewNavigationSynthesizer(config.DefaultGuidance(), nil, nil, "")
	rec := &recorder{}
	corner := at(0, 100)

	nav.Update(corner, turnAhead(geo.TurnRight, corner, 10), rec)
	nav.Update(corner, turnAhead(geo.TurnRight, corner, 30), rec)
	assert.Equal(t, []string{"Turn right now"}, rec.texts())
}

func TestNavigationDistinctTurnsAreSeparateInstances(t *testing.T) {
	nav := NewNavigationSynthesizer(config.DefaultGuidance(), nil, nil, "")
	rec := &recorder{}
	first, second := at(0, 100), at(0, 200)

	nav.Update(origin, turnAhead(geo.TurnLeft, first, 30), rec)
	nav.Update(origin, turnAhead(geo.TurnLeft, second, 30), rec)
	assert.Len(t, rec.spoken, 2)
}

func TestNavigationLandmarkPhrasings(t *testing.T) {
	corner := at(0, 100)
	cases := []struct {
		name     string
		walker   geo.Coordinate
		landmark geo.Coordinate
		want     string
	}{
		{
			name:     "passed",
			walker:   geo.Destination(corner, 180, 30),
			landmark: geo.Destination(geo.Destination(corner, 180, 30), 90, 5),
			want:     "You passed the bell tower, turn left in 30 meters",
		},
		{
			name:     "after",
			walker:   geo.Destination(corner, 180, 30),
			landmark: geo.Destination(geo.Destination(corner, 180, 15), 90, 3),
			want:     "Turn left after the bell tower",
		},
		{
			name:     "near",
			walker:   geo.Destination(corner, 180, 30),
			landmark: geo.Destination(geo.Destination(corner, 180, 50), 90, 10),
			want:     "You are near the bell tower, turn left in 30 meters",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tower := models.Landmark{ID: "tower", Name: "Tower", NavigationPhrase: "the bell tower", Coord: tc.landmark}
			nav := NewNavigationSynthesizer(config.DefaultGuidance(), []models.Landmark{tower}, nil, "")
			rec := &recorder{}

			nav.Update(tc.walker, turnAhead(geo.TurnLeft, corner, 30), rec)
			assert.Equal(t, []string{tc.want}, rec.texts())
		})
	}
}

func TestNavigationLandmarkUsedOnce(t *testing.T) {
	tower := models.Landmark{ID: "tower", Name: "Tower", Coord: origin}
	nav := NewNavigationSynthesizer(config.DefaultGuidance(), []models.Landmark{tower}, nil, "")
	rec := &recorder{}

	walker := at(180, 15)
	first, second := at(90, 20), at(270, 20)
	nav.Update(walker, turnAhead(geo.TurnLeft, first, 20), rec)
	nav.Update(walker, turnAhead(geo.TurnRight, second, 20), rec)

	assert.Equal(t, []string{"Turn left after Tower", "Turn right in 20 meters"}, rec.texts())
}

func TestNavigationFarLandmarkIsIgnored(t *testing.T) {
	tower := models.Landmark{ID: "tower", Name: "Tower", Coord: at(90, 40)}
	nav := NewNavigationSynthesizer(config.DefaultGuidance(), []models.Landmark{tower}, nil, "")
	rec := &recorder{}

	nav.Update(origin, turnAhead(geo.TurnLeft, at(0, 25), 25), rec)
	assert.Equal(t, []string{"Turn left in 25 meters"}, rec.texts())
}

func TestNavigationArrivalOnce(t *testing.T) {
	nav := NewNavigationSynthesizer(config.DefaultGuidance(), nil, nil, "You have arrived at your destination.")
	rec := &recorder{}
	arrive := simulation.Instruction{Maneuver: geo.Arrive, Text: geo.Arrive.Label(), At: origin}

	nav.Update(origin, arrive, rec)
	rec.finish()
	nav.Update(origin, arrive, rec)
	assert.Equal(t, []string{"You have arrived at your destination."}, rec.texts())

	nav.Reset()
	nav.Update(origin, arrive, rec)
	assert.Len(t, rec.spoken, 2)
}

func TestNavigationStraightIsSilent(t *testing.T) {
	nav := NewNavigationSynthesizer(config.DefaultGuidance(), nil, nil, "")
	rec := &recorder{}
	nav.Update(origin, turnAhead(geo.Straight, at(0, 10), 10), rec)
	assert.Empty(t, rec.spoken)
}

func TestSpokenDistance(t *testing.T) {
	assert.Equal(t, "35 meters", SpokenDistance(34.2))
	assert.Equal(t, "5 meters", SpokenDistance(0.4))
	assert.Equal(t, "25 meters", SpokenDistance(23))
	assert.Equal(t, "1.2 kilometers", SpokenDistance(1234))
}
