package models

import "campus-navigator/geo"

// Landmark is a named place the walker can be told about.
type Landmark struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Coord            geo.Coordinate `json:"coord"`
	NavigationPhrase string         `json:"navigationPhrase,omitempty"` // spoken near a turn
	TourPhrase       string         `json:"tourPhrase,omitempty"`       // spoken as storytelling
}

// NavigationLabel is how the landmark is referred to in turn instructions.
func (l Landmark) NavigationLabel() string {
	if l.NavigationPhrase != "" {
		return l.NavigationPhrase
	}
	return l.Name
}
