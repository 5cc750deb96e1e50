package narration

import (
	"campus-navigator/config"
	"campus-navigator/geo"
	"campus-navigator/models"
	"campus-navigator/speech"
)

const welcomeKey = "tour:welcome"

func tourKey(id string) string { return "tour:" + id }

// TourSynthesizer tells the story of a landmark when the walker reaches it.
type TourSynthesizer struct {
	cfg       config.GuidanceConfig
	landmarks []models.Landmark
	visited   *VisitedSet
	welcome   string

	welcomed bool
	current  string // landmark whose story is or was last playing
	last     *speech.Request
}

// NewTourSynthesizer keeps only landmarks that have a tour phrase. An empty welcome
// phrase disables the greeting.
func NewTourSynthesizer(cfg config.GuidanceConfig, landmarks []models.Landmark, visited *VisitedSet, welcome string) *TourSynthesizer {
	if visited == nil {
		visited = NewVisitedSet()
	}
	withStory := make([]models.Landmark, 0, len(landmarks))
	for _, lm := range landmarks {
		if lm.TourPhrase != "" {
			withStory = append(withStory, lm)
		}
	}
	return &TourSynthesizer{cfg: cfg, landmarks: withStory, visited: visited, welcome: welcome}
}

// Update runs once per tick with the current walker position.
func (s *TourSynthesizer) Update(pos geo.Coordinate, ch Speaker) {
	if !s.welcomed && s.welcome != "" {
		req := speech.Request{Text: s.welcome, Priority: speech.Tour, Key: welcomeKey}
		if ch.Speak(req) {
			s.welcomed = true
			s.last = &req
		}
		return
	}

	nearest, _ := nearestLandmark(pos, s.landmarks, nil)
	if nearest == nil {
		return
	}

	if s.current != "" && nearest.ID != s.current {
		if prev := s.find(s.current); prev == nil || geo.Distance(pos, prev.Coord) > s.cfg.TourLeaveRadiusM {
			ch.StopKey(tourKey(s.current))
			s.current = ""
		}
	}

	if ch.IsSpeaking() {
		return
	}
	// A visited landmark standing closer must not hide a fresh one in range.
	candidate, dist := nearestLandmark(pos, s.landmarks, func(lm models.Landmark) bool {
		return !s.visited.HasVisited(lm.ID)
	})
	if candidate == nil || dist > s.cfg.TourTriggerRadiusM {
		return
	}
	req := speech.Request{Text: candidate.TourPhrase, Priority: speech.Tour, Key: tourKey(candidate.ID)}
	if ch.Speak(req) {
		s.visited.Mark(candidate.ID)
		s.current = candidate.ID
		s.last = &req
	}
}

// RepeatLast speaks the most recent tour narration again.
func (s *TourSynthesizer) RepeatLast(ch Speaker) bool {
	if s.last == nil {
		return false
	}
	return ch.Speak(*s.last)
}

// LastNarration is the most recent accepted tour text.
func (s *TourSynthesizer) LastNarration() (string, bool) {
	if s.last == nil {
		return "", false
	}
	return s.last.Text, true
}

// Reset makes every landmark and the welcome eligible again.
func (s *TourSynthesizer) Reset() {
	s.visited.Reset()
	s.welcomed = false
	s.current = ""
	s.last = nil
}

func (s *TourSynthesizer) find(id string) *models.Landmark {
	for i := range s.landmarks {
		if s.landmarks[i].ID == id {
			return &s.landmarks[i]
		}
	}
	return nil
}
