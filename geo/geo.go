// Package geo holds the spherical geometry shared by routing, simulation and narration.
package geo

import (
	"fmt"
	"math"
)

const (
	// EarthRadiusM is the mean Earth radius used by Distance.
	EarthRadiusM = 6371000.0

	// DefaultManeuverThresholdDeg is the bearing change beyond which a junction is
	// announced as a turn. It is a tuning value, not a physical one; see
	// config.GuidanceConfig.ManeuverThresholdDeg.
	DefaultManeuverThresholdDeg = 35.0
)

// Coordinate is a (longitude, latitude) pair in degrees.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lon, c.Lat)
}

// Valid reports whether both components are finite and inside the WGS84 ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lon) || math.IsNaN(c.Lat) || math.IsInf(c.Lon, 0) || math.IsInf(c.Lat, 0) {
		return false
	}
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func toDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Distance returns the haversine great-circle distance in meters.
func Distance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}
	phi1 := toRadians(a.Lat)
	phi2 := toRadians(b.Lat)
	deltaPhi := toRadians(b.Lat - a.Lat)
	deltaLambda := toRadians(b.Lon - a.Lon)

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusM * c
}

// Bearing returns the initial compass bearing from a towards b in [0, 360).
func Bearing(a, b Coordinate) float64 {
	phi1 := toRadians(a.Lat)
	phi2 := toRadians(b.Lat)
	deltaLambda := toRadians(b.Lon - a.Lon)

	y := math.Sin(deltaLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	return NormalizeBearing(toDegrees(math.Atan2(y, x)))
}

// NormalizeBearing folds any angle into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// AngleDelta returns the signed shortest rotation from one bearing to another,
// normalized to (-180, 180]. Positive is clockwise.
func AngleDelta(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// Lerp interpolates linearly between a and b. t is not clamped.
func Lerp(a, b Coordinate, t float64) Coordinate {
	return Coordinate{
		Lon: a.Lon + (b.Lon-a.Lon)*t,
		Lat: a.Lat + (b.Lat-a.Lat)*t,
	}
}

// Destination returns the point reached by travelling meters along bearing from origin.
func Destination(origin Coordinate, bearing, meters float64) Coordinate {
	delta := meters / EarthRadiusM
	theta := toRadians(bearing)
	phi1 := toRadians(origin.Lat)
	lambda1 := toRadians(origin.Lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	return Coordinate{Lon: toDegrees(lambda2), Lat: toDegrees(phi2)}
}

// PathLength sums the great-circle distance between consecutive points.
func PathLength(points []Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// FormatDistance renders meters for display: whole meters below one kilometer,
// kilometers with one decimal above.
func FormatDistance(meters float64) string {
	if meters < 0 {
		meters = 0
	}
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}
