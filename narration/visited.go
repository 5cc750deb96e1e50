// Package narration decides what to say and when. Two synthesizers, one for
// turn-by-turn navigation and one for tour storytelling, read the walker position every
// tick and submit utterances to a shared speech channel. Each owns a VisitedSet so that
// a feature is narrated at most once per session.
package narration

import (
	"strings"

	"campus-navigator/geo"
	"campus-navigator/models"
	"campus-navigator/speech"
)

// Speaker is the part of speech.Channel the synthesizers use.
type Speaker interface {
	Speak(req speech.Request) bool
	IsSpeaking() bool
	StopKey(key string) bool
}

// VisitedSet remembers dedupe keys. The zero value is ready to use.
type VisitedSet struct {
	keys map[string]struct{}
}

func NewVisitedSet() *VisitedSet {
	return &VisitedSet{}
}

func (v *VisitedSet) Mark(key string) {
	if v.keys == nil {
		v.keys = make(map[string]struct{})
	}
	v.keys[key] = struct{}{}
}

func (v *VisitedSet) HasVisited(key string) bool {
	_, ok := v.keys[key]
	return ok
}

func (v *VisitedSet) Reset() {
	v.keys = nil
}

func (v *VisitedSet) Len() int {
	return len(v.keys)
}

// nearestLandmark returns the closest landmark accepted by keep, or nil.
func nearestLandmark(pos geo.Coordinate, landmarks []models.Landmark, keep func(models.Landmark) bool) (*models.Landmark, float64) {
	var best *models.Landmark
	bestDist := 0.0
	for i := range landmarks {
		lm := &landmarks[i]
		if keep != nil && !keep(*lm) {
			continue
		}
		d := geo.Distance(pos, lm.Coord)
		if best == nil || d < bestDist {
			best = lm
			bestDist = d
		}
	}
	return best, bestDist
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
