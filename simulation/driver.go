// Package simulation walks a virtual pedestrian along a resolved route.
//
// The Driver is a state object advanced by Step. It never schedules itself: the owner
// decides when frames happen and passes the frame time in, which keeps the walk
// reproducible under test and lets pauses freeze time exactly.
package simulation

import (
	"time"

	"campus-navigator/config"
	"campus-navigator/geo"
	"campus-navigator/routing"
)

type Driver struct {
	sim   config.SimulationConfig
	guide config.GuidanceConfig

	route    []geo.Coordinate
	lengths  []float64
	bearings []float64

	speed    Speed
	state    State
	started  bool
	finished bool
	paused   bool
	pausedAt time.Time
	segStart time.Time

	last Update
}

func NewDriver(sim config.SimulationConfig, guide config.GuidanceConfig) *Driver {
	return &Driver{sim: sim, guide: guide}
}

// SetRoute resets the driver and loads a new route. An empty route leaves it idle.
func (d *Driver) SetRoute(r routing.RouteResult) {
	d.Reset()
	d.route = append([]geo.Coordinate(nil), r.Coordinates...)
	n := len(d.route) - 1
	if n < 0 {
		n = 0
	}
	d.lengths = make([]float64, n)
	d.bearings = make([]float64, n)
	for i := 0; i < n; i++ {
		d.lengths[i] = geo.Distance(d.route[i], d.route[i+1])
		d.bearings[i] = geo.Bearing(d.route[i], d.route[i+1])
	}
}

// Reset drops the route and returns to Idle. The speed preset is kept.
func (d *Driver) Reset() {
	d.route = nil
	d.lengths = nil
	d.bearings = nil
	d.state = State{}
	d.started = false
	d.finished = false
	d.paused = false
	d.pausedAt = time.Time{}
	d.segStart = time.Time{}
	d.last = Update{}
}

func (d *Driver) HasRoute() bool { return len(d.route) > 0 }

func (d *Driver) Finished() bool { return d.finished }

func (d *Driver) Paused() bool { return d.paused }

func (d *Driver) State() State { return d.state }

// Last returns the update produced by the most recent Step.
func (d *Driver) Last() Update { return d.last }

func (d *Driver) SpeedPreset() Speed { return d.speed }

// SpeedMPS is the walking pace of the current preset.
func (d *Driver) SpeedMPS() float64 {
	switch d.speed {
	case Slow:
		return d.sim.SlowMPS
	case Fast:
		return d.sim.FastMPS
	default:
		return d.sim.NormalMPS
	}
}

// SetSpeed switches preset without jumping: the fraction of the current segment already
// walked is preserved.
func (d *Driver) SetSpeed(s Speed, now time.Time) {
	if s == d.speed {
		return
	}
	if !d.started || d.finished || len(d.lengths) == 0 {
		d.speed = s
		return
	}
	ref := now
	if d.paused {
		ref = d.pausedAt
	}
	oldDur := d.segmentDuration(d.state.Segment)
	t := 0.0
	if oldDur > 0 {
		t = float64(ref.Sub(d.segStart)) / float64(oldDur)
	}
	d.speed = s
	d.segStart = ref.Add(-time.Duration(t * float64(d.segmentDuration(d.state.Segment))))
}

// Pause freezes elapsed-time accounting at now.
func (d *Driver) Pause(now time.Time) {
	if d.paused || d.finished {
		return
	}
	d.paused = true
	d.pausedAt = now
}

// Resume continues from where Pause froze the walk.
func (d *Driver) Resume(now time.Time) {
	if !d.paused {
		return
	}
	d.paused = false
	if d.started {
		d.segStart = d.segStart.Add(now.Sub(d.pausedAt))
	}
	d.pausedAt = time.Time{}
}

func (d *Driver) segmentDuration(i int) time.Duration {
	mps := d.SpeedMPS()
	if mps <= 0 || i >= len(d.lengths) {
		return 0
	}
	return time.Duration(d.lengths[i] / mps * float64(time.Second))
}

// Step advances the walk to now and returns the new update. Stepping an idle, paused
// or finished driver returns the previous update unchanged.
func (d *Driver) Step(now time.Time) Update {
	if len(d.route) == 0 || d.finished || d.paused {
		return d.last
	}

	if len(d.route) == 1 {
		return d.arriveInPlace()
	}

	if !d.started {
		d.started = true
		d.segStart = now
		d.state.Heading = d.bearings[0]
		d.state.Camera = Follow
	}

	last := len(d.lengths) - 1
	i := d.state.Segment
	var t float64
	for {
		dur := d.segmentDuration(i)
		if dur <= 0 {
			t = 1
		} else {
			t = float64(now.Sub(d.segStart)) / float64(dur)
		}
		if t < 1 || i == last {
			break
		}
		d.segStart = d.segStart.Add(dur)
		i++
	}
	if t < 0 {
		t = 0
	}
	if t >= 1 {
		t = 1
		d.finished = true
	}
	d.state.Segment = i

	a, b := d.route[i], d.route[i+1]
	d.state.Position = geo.Lerp(a, b, t)

	heading := d.state.Heading + geo.AngleDelta(d.state.Heading, d.bearings[i])*d.sim.HeadingSmoothing
	d.state.Heading = geo.NormalizeBearing(heading)

	instr := d.lookahead(i, t)
	if instr.Maneuver.IsTurn() && instr.DistanceM <= d.guide.CameraTurnDistanceM {
		d.state.Camera = Turn
	} else {
		d.state.Camera = Follow
	}

	target := d.SpeedMPS()
	if d.state.Camera == Turn {
		target *= d.sim.TurnSpeedFactor
	}
	d.state.SpeedMPS += (target - d.state.SpeedMPS) * d.sim.SpeedSmoothing

	if i == last && t > d.sim.ArrivalFraction {
		instr = newInstruction(geo.Arrive, d.route[len(d.route)-1], 0)
	}

	covered := make([]geo.Coordinate, 0, i+2)
	covered = append(covered, d.route[:i+1]...)
	covered = append(covered, d.state.Position)

	d.last = Update{
		State:       d.state,
		Covered:     covered,
		Instruction: instr,
		Finished:    d.finished,
	}
	return d.last
}

// lookahead finds the next maneuver worth announcing from segment i at fraction t.
// A turn at the coming junction wins; otherwise distance accumulates through straight
// junctions up to the next turn or the end of the route.
func (d *Driver) lookahead(i int, t float64) Instruction {
	threshold := d.guide.ManeuverThresholdDeg
	dist := d.lengths[i] * (1 - t)
	for j := i; j+1 < len(d.lengths); j++ {
		m := geo.ClassifyManeuver(d.bearings[j], d.bearings[j+1], threshold)
		if m.IsTurn() {
			return newInstruction(m, d.route[j+1], dist)
		}
		dist += d.lengths[j+1]
	}
	return newInstruction(geo.Straight, d.route[len(d.route)-1], dist)
}

func (d *Driver) arriveInPlace() Update {
	d.started = true
	d.finished = true
	d.state.Position = d.route[0]
	d.state.Camera = Follow
	d.last = Update{
		State:       d.state,
		Covered:     []geo.Coordinate{d.route[0]},
		Instruction: newInstruction(geo.Arrive, d.route[0], 0),
		Finished:    true,
	}
	return d.last
}
