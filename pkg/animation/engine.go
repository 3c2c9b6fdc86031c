// Package animation drives time-based property animation over a scene
// graph. An Engine owns a virtual clock and a registry of tracks; each
// frame the render loop calls Advance with the elapsed wall time and
// the engine evaluates every active track and writes the result into
// its target node. Engines are independent: two scenes running side by
// side each hold their own clock and track list.
package animation

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/orrery-engine/orrery/pkg/scene"
)

var (
	// ErrInvalidDescriptor rejects a track at registration time. The
	// engine keeps no partial state for a rejected track.
	ErrInvalidDescriptor = errors.New("animation: invalid track descriptor")

	// ErrInvalidTimeDelta rejects a negative or non-finite delta passed
	// to Advance. The clock and all track state stay untouched.
	ErrInvalidTimeDelta = errors.New("animation: invalid time delta")
)

// RotationUnit selects how authored rotation values map onto the
// radian representation the scene graph stores. The conversion happens
// once, at evaluation time, so descriptors keep their document units.
type RotationUnit uint8

const (
	// Radians applies rotation values as-is.
	Radians RotationUnit = iota
	// Degrees converts rotation values from degrees at evaluation.
	Degrees
)

// Config parameterizes a new Engine.
type Config struct {
	// Log receives per-track diagnostics. Nil disables logging.
	Log *zap.Logger

	// RotationUnit is the unit rotation tracks are authored in.
	RotationUnit RotationUnit
}

// FrameStats reports what one Advance call did, mostly for tests and
// debug overlays.
type FrameStats struct {
	// Active counts tracks past their start delay this frame.
	Active int
	// Applied counts successful property writes.
	Applied int
	// Missing counts evaluations skipped because the target node is
	// not in the registry.
	Missing int
	// Skipped counts evaluations dropped because the value could not
	// be applied to the node.
	Skipped int
	// Completed counts tracks that finished their last cycle this
	// frame.
	Completed int
}

// trackState is the mutable half of a registered track.
type trackState struct {
	track Track

	hasStarted bool
	active     bool
	finished   bool

	cycleElapsed     float64
	remainingRepeats int
	registeredAt     float64

	// baseline holds the target's pre-animation value, captured at the
	// first write and restored by fill=remove.
	baseline []float32

	missingSeen bool

	scratch []float32
}

// Engine evaluates registered tracks against a virtual clock. It is
// single-threaded: Advance must only be called from the render loop.
type Engine struct {
	log    *zap.Logger
	unit   RotationUnit
	clock  float64
	tracks []*trackState
}

// NewEngine returns an empty engine with its clock at zero.
func NewEngine(cfg Config) *Engine {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, unit: cfg.RotationUnit}
}

// Clock returns the current virtual time in seconds.
func (e *Engine) Clock() float64 {
	return e.clock
}

// TrackCount returns the number of registered tracks, finished ones
// included.
func (e *Engine) TrackCount() int {
	return len(e.tracks)
}

// RegisterTrack validates t and inserts it with fresh state. The start
// delay counts from the clock value at registration. A validation
// failure returns ErrInvalidDescriptor and registers nothing.
func (e *Engine) RegisterTrack(t Track) error {
	if err := t.validate(); err != nil {
		return fmt.Errorf("%w: %s/%v", ErrInvalidDescriptor, t.TargetID, err)
	}
	e.tracks = append(e.tracks, &trackState{
		track:            t,
		remainingRepeats: t.Repeat,
		registeredAt:     e.clock,
		scratch:          make([]float32, t.Property.Arity()),
	})
	return nil
}

// RemoveTrack drops every track targeting (targetID, p) and returns
// how many were removed. Removal takes effect before the next Advance.
func (e *Engine) RemoveTrack(targetID string, p Property) int {
	kept := e.tracks[:0]
	removed := 0
	for _, ts := range e.tracks {
		if ts.track.TargetID == targetID && ts.track.Property == p {
			removed++
			continue
		}
		kept = append(kept, ts)
	}
	for i := len(kept); i < len(e.tracks); i++ {
		e.tracks[i] = nil
	}
	e.tracks = kept
	return removed
}

// Advance moves the clock forward by dt seconds and evaluates every
// registered track against reg. A negative or non-finite dt returns
// ErrInvalidTimeDelta with the engine untouched. A single broken track
// never aborts the frame: its evaluation is skipped and counted in the
// returned stats.
func (e *Engine) Advance(dt float64, reg *scene.Registry) (FrameStats, error) {
	var stats FrameStats
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return stats, fmt.Errorf("%w: %v", ErrInvalidTimeDelta, dt)
	}
	e.clock += dt

	for _, ts := range e.tracks {
		if ts.finished {
			continue
		}
		if !ts.hasStarted {
			since := e.clock - ts.registeredAt
			if since < ts.track.Delay {
				continue
			}
			// Start mid-cycle by the overflow past the delay so a
			// coarse frame does not bias every delayed track late.
			ts.hasStarted = true
			ts.active = true
			ts.cycleElapsed = since - ts.track.Delay
		} else if ts.active {
			ts.cycleElapsed += dt
		}
		stats.Active++
		e.step(ts, reg, &stats)
	}
	return stats, nil
}

// progressNow resolves the cycle boundary before evaluation: a
// repeating track that crossed its duration this frame wraps to the
// start of the next cycle and is sampled there, so a reader after
// Advance sees the new cycle, not a stale endpoint. The wrap discards
// fractional overflow past the boundary.
func (ts *trackState) progressNow() (progress float64, final bool) {
	if ts.track.Duration <= 0 {
		return 1, true
	}
	progress = ts.cycleElapsed / ts.track.Duration
	if progress < 1 {
		return progress, false
	}
	switch {
	case ts.track.Repeat == RepeatIndefinite:
		ts.cycleElapsed = 0
		return 0, false
	case ts.remainingRepeats > 1:
		ts.remainingRepeats--
		ts.cycleElapsed = 0
		return 0, false
	default:
		return 1, true
	}
}

// step evaluates one started track at the current clock and writes the
// result into its target node.
func (e *Engine) step(ts *trackState, reg *scene.Registry, stats *FrameStats) {
	progress, final := ts.progressNow()

	node, ok := reg.Lookup(ts.track.TargetID)
	if !ok {
		stats.Missing++
		if !ts.missingSeen {
			ts.missingSeen = true
			e.log.Debug("animation target missing",
				zap.String("target", ts.track.TargetID),
				zap.Stringer("property", ts.track.Property))
		}
		if final {
			e.finish(ts, stats)
		}
		return
	}

	if ts.baseline == nil {
		ts.baseline = read(node, ts.track.Property)
	}

	ts.track.evaluate(progress, ts.scratch)
	value := ts.scratch
	if final && ts.track.Fill == FillRemove {
		// Restore the pre-animation value verbatim, no unit pass.
		value = ts.baseline
	} else if ts.track.Property == Rotation && e.unit == Degrees {
		for i := range value {
			value[i] *= math32.Pi / 180
		}
	}

	if !apply(node, ts.track.Property, value) {
		stats.Skipped++
		e.log.Warn("animation value not applicable",
			zap.String("target", ts.track.TargetID),
			zap.Stringer("property", ts.track.Property))
		if final {
			e.finish(ts, stats)
		}
		return
	}
	stats.Applied++

	if final {
		e.finish(ts, stats)
	}
}

func (e *Engine) finish(ts *trackState, stats *FrameStats) {
	ts.active = false
	ts.finished = true
	stats.Completed++
}
