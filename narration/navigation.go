package narration

import (
	"fmt"
	"math"

	"campus-navigator/config"
	"campus-navigator/geo"
	"campus-navigator/models"
	"campus-navigator/simulation"
	"campus-navigator/speech"
)

const arrivalKey = "nav:arrive"

// NavigationSynthesizer turns the driver's lookahead into spoken turn instructions,
// anchoring them to a nearby landmark when one is close enough.
type NavigationSynthesizer struct {
	cfg       config.GuidanceConfig
	landmarks []models.Landmark
	visited   *VisitedSet
	arrival   string
}

func NewNavigationSynthesizer(cfg config.GuidanceConfig, landmarks []models.Landmark, visited *VisitedSet, arrival string) *NavigationSynthesizer {
	if visited == nil {
		visited = NewVisitedSet()
	}
	if arrival == "" {
		arrival = geo.Arrive.Label() + "."
	}
	return &NavigationSynthesizer{cfg: cfg, landmarks: landmarks, visited: visited, arrival: arrival}
}

// Update runs once per tick, after the driver has produced instr for pos.
func (s *NavigationSynthesizer) Update(pos geo.Coordinate, instr simulation.Instruction, ch Speaker) {
	if instr.Maneuver == geo.Arrive {
		if !s.visited.HasVisited(arrivalKey) {
			s.visited.Mark(arrivalKey)
			ch.Speak(speech.Request{Text: s.arrival, Priority: speech.Navigation, Key: arrivalKey})
		}
		return
	}
	if !instr.Maneuver.IsTurn() {
		return
	}

	turn := instr.Key()
	prepareKey, executeKey := turn+":prepare", turn+":execute"

	switch {
	case instr.DistanceM <= s.cfg.ExecuteDistanceM:
		if s.visited.HasVisited(executeKey) {
			return
		}
		s.visited.Mark(executeKey)
		s.visited.Mark(prepareKey)
		ch.Speak(speech.Request{
			Text:     instr.Text + " now",
			Priority: speech.Navigation,
			Key:      executeKey,
		})

	case instr.DistanceM <= s.cfg.PrepareDistanceM:
		if s.visited.HasVisited(prepareKey) {
			return
		}
		s.visited.Mark(prepareKey)
		ch.Speak(speech.Request{
			Text:     s.preparePhrase(pos, instr),
			Priority: speech.Navigation,
			Key:      prepareKey,
		})
	}
}

// Reset forgets every spoken maneuver and landmark.
func (s *NavigationSynthesizer) Reset() {
	s.visited.Reset()
}

func (s *NavigationSynthesizer) preparePhrase(pos geo.Coordinate, instr simulation.Instruction) string {
	in := SpokenDistance(instr.DistanceM)

	lm, dist := nearestLandmark(pos, s.landmarks, func(lm models.Landmark) bool {
		return lm.NavigationLabel() != "" && !s.visited.HasVisited(landmarkKey(lm.ID))
	})
	if lm == nil || dist > s.cfg.LandmarkRadiusM {
		return fmt.Sprintf("%s in %s", instr.Text, in)
	}
	s.visited.Mark(landmarkKey(lm.ID))

	name := lm.NavigationLabel()
	switch {
	case dist < s.cfg.PassedLandmarkRadiusM:
		return fmt.Sprintf("You passed %s, %s in %s", name, lowerFirst(instr.Text), in)
	case geo.Distance(lm.Coord, instr.At) <= s.cfg.LandmarkNearTurnM:
		return fmt.Sprintf("%s after %s", instr.Text, name)
	default:
		return fmt.Sprintf("You are near %s, %s in %s", name, lowerFirst(instr.Text), in)
	}
}

func landmarkKey(id string) string { return "landmark:" + id }

// SpokenDistance rounds to the nearest 5 meters for speech.
func SpokenDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f kilometers", meters/1000)
	}
	m := int(math.Round(meters/5) * 5)
	if m < 5 {
		m = 5
	}
	return fmt.Sprintf("%d meters", m)
}
