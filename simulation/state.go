package simulation

import (
	"fmt"
	"strings"

	"campus-navigator/geo"
)

// CameraMode is the framing hint sent with every update.
type CameraMode int

const (
	Idle CameraMode = iota
	Follow
	Turn
)

func (m CameraMode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Follow:
		return "follow"
	case Turn:
		return "turn"
	default:
		return "unknown"
	}
}

func (m CameraMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Speed selects one of the configured walking paces.
type Speed int

const (
	Normal Speed = iota
	Slow
	Fast
)

func (s Speed) String() string {
	switch s {
	case Slow:
		return "slow"
	case Fast:
		return "fast"
	default:
		return "normal"
	}
}

func (s Speed) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSpeed accepts "slow", "normal" or "fast". An empty string means normal.
func ParseSpeed(s string) (Speed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return Normal, nil
	case "slow":
		return Slow, nil
	case "fast":
		return Fast, nil
	default:
		return Normal, fmt.Errorf("unknown speed preset %q", s)
	}
}

// State is the walker as of the last step.
type State struct {
	Position geo.Coordinate `json:"position"`
	Segment  int            `json:"segment"`
	Heading  float64        `json:"heading"`
	SpeedMPS float64        `json:"speedMps"`
	Camera   CameraMode     `json:"camera"`
}

// Instruction is the upcoming maneuver and how far away it is.
type Instruction struct {
	Maneuver  geo.Maneuver   `json:"maneuver"`
	Text      string         `json:"text"`
	At        geo.Coordinate `json:"at"`
	DistanceM float64        `json:"distanceM"`
	Distance  string         `json:"distance"`
}

func newInstruction(m geo.Maneuver, at geo.Coordinate, meters float64) Instruction {
	if meters < 0 {
		meters = 0
	}
	return Instruction{
		Maneuver:  m,
		Text:      m.Label(),
		At:        at,
		DistanceM: meters,
		Distance:  geo.FormatDistance(meters),
	}
}

// Key identifies one physical maneuver instance on the route.
func (i Instruction) Key() string {
	return fmt.Sprintf("%s@%.7f,%.7f", i.Maneuver, i.At.Lon, i.At.Lat)
}

// Update is what one tick publishes to the surrounding application.
type Update struct {
	State       State            `json:"state"`
	Covered     []geo.Coordinate `json:"covered"`
	Instruction Instruction      `json:"instruction"`
	Finished    bool             `json:"finished"`
}

// Active reports whether the update belongs to a route in progress.
func (u Update) Active() bool {
	return u.State.Camera != Idle && !u.Finished
}
