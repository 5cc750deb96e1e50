package geo

import "math"

// Maneuver is a directional change at a route junction.
type Maneuver int

const (
	Straight Maneuver = iota
	TurnLeft
	TurnRight
	// Arrive marks the end of a route. ClassifyManeuver never returns it.
	Arrive
)

func (m Maneuver) String() string {
	switch m {
	case Straight:
		return "straight"
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	case Arrive:
		return "arrive"
	default:
		return "unknown"
	}
}

func (m Maneuver) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Label is the phrase used in spoken and displayed instructions.
func (m Maneuver) Label() string {
	switch m {
	case TurnLeft:
		return "Turn left"
	case TurnRight:
		return "Turn right"
	case Arrive:
		return "You have arrived"
	default:
		return "Continue straight"
	}
}

// IsTurn reports whether the maneuver changes direction.
func (m Maneuver) IsTurn() bool {
	return m == TurnLeft || m == TurnRight
}

// ClassifyManeuver compares the bearing entering a junction with the bearing leaving
// it. A change larger than thresholdDeg clockwise is a right turn, counter-clockwise a
// left turn. An exact reversal has no side and is reported as Straight, which keeps the
// classification antisymmetric when the two bearings are swapped.
func ClassifyManeuver(bearingIn, bearingOut, thresholdDeg float64) Maneuver {
	d := AngleDelta(bearingIn, bearingOut)
	if math.Abs(d) == 180 {
		return Straight
	}
	switch {
	case d > thresholdDeg:
		return TurnRight
	case d < -thresholdDeg:
		return TurnLeft
	default:
		return Straight
	}
}
