package animation

import (
	"fmt"
	"math"
)

// RepeatIndefinite makes a track cycle until it is removed.
const RepeatIndefinite = -1

// FillMode selects what a finished track leaves on its target.
type FillMode uint8

const (
	// FillFreeze holds the final animated value.
	FillFreeze FillMode = iota
	// FillRemove restores the value the target had before the track
	// first wrote to it.
	FillRemove
)

func (f FillMode) String() string {
	switch f {
	case FillFreeze:
		return "freeze"
	case FillRemove:
		return "remove"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(f))
	}
}

// Track describes one animation: a target node, a property, either a
// from/to pair or a keyframe sequence, and its timing envelope. Tracks
// are validated once at registration and never mutated afterwards.
type Track struct {
	TargetID string
	Property Property

	// Simple mode: interpolate From to To over one cycle.
	From []float32
	To   []float32

	// Keyframe mode: Values[i] is reached at KeyTimes[i], with
	// KeyTimes normalized over [0,1].
	Values   [][]float32
	KeyTimes []float32

	// Duration of one cycle and the delay before the first, both in
	// seconds of engine time.
	Duration float64
	Delay    float64

	// Repeat counts cycles; RepeatIndefinite never finishes.
	Repeat int

	Fill FillMode
}

// Keyframed reports whether the track carries a keyframe sequence
// rather than a from/to pair.
func (t *Track) Keyframed() bool {
	return len(t.Values) > 0
}

// validate checks the descriptor before it enters the registry. Errors
// are wrapped in ErrInvalidDescriptor by the caller.
func (t *Track) validate() error {
	if t.TargetID == "" {
		return fmt.Errorf("empty target id")
	}
	if t.Property > Opacity {
		return fmt.Errorf("unknown property %d", uint8(t.Property))
	}
	arity := t.Property.Arity()

	simple := len(t.From) > 0 || len(t.To) > 0
	keyed := len(t.Values) > 0 || len(t.KeyTimes) > 0
	switch {
	case simple && keyed:
		return fmt.Errorf("%s: both from/to and values given", t.Property)
	case !simple && !keyed:
		return fmt.Errorf("%s: neither from/to nor values given", t.Property)
	}

	if simple {
		if len(t.From) != arity {
			return fmt.Errorf("%s: from has %d components, want %d", t.Property, len(t.From), arity)
		}
		if len(t.To) != arity {
			return fmt.Errorf("%s: to has %d components, want %d", t.Property, len(t.To), arity)
		}
	} else {
		if len(t.Values) < 2 {
			return fmt.Errorf("%s: %d keyframes, want at least 2", t.Property, len(t.Values))
		}
		for i, v := range t.Values {
			if len(v) != arity {
				return fmt.Errorf("%s: keyframe %d has %d components, want %d", t.Property, i, len(v), arity)
			}
		}
		if len(t.KeyTimes) != len(t.Values) {
			return fmt.Errorf("%s: %d keyTimes for %d values", t.Property, len(t.KeyTimes), len(t.Values))
		}
		for i, kt := range t.KeyTimes {
			if math.IsNaN(float64(kt)) {
				return fmt.Errorf("%s: keyTime %d is NaN", t.Property, i)
			}
			if i > 0 && kt < t.KeyTimes[i-1] {
				return fmt.Errorf("%s: keyTimes decrease at %d", t.Property, i)
			}
		}
		if t.KeyTimes[0] != 0 {
			return fmt.Errorf("%s: first keyTime is %v, want 0", t.Property, t.KeyTimes[0])
		}
		if last := t.KeyTimes[len(t.KeyTimes)-1]; last != 1 {
			return fmt.Errorf("%s: last keyTime is %v, want 1", t.Property, last)
		}
	}

	if math.IsNaN(t.Duration) || math.IsInf(t.Duration, 0) || t.Duration <= 0 {
		return fmt.Errorf("%s: duration %v, want finite > 0", t.Property, t.Duration)
	}
	if math.IsNaN(t.Delay) || math.IsInf(t.Delay, 0) || t.Delay < 0 {
		return fmt.Errorf("%s: delay %v, want finite >= 0", t.Property, t.Delay)
	}
	if t.Repeat != RepeatIndefinite && t.Repeat < 1 {
		return fmt.Errorf("%s: repeat %d, want >= 1 or indefinite", t.Property, t.Repeat)
	}
	return nil
}

// lerpInto writes the interpolation of a and b at parameter u into dst.
// The endpoints are copied verbatim so that u=0 and u=1 reproduce a and
// b exactly, independent of float rounding.
func lerpInto(dst, a, b []float32, u float64) {
	switch {
	case u <= 0:
		copy(dst, a)
	case u >= 1:
		copy(dst, b)
	default:
		f := float32(u)
		for i := range dst {
			dst[i] = a[i] + (b[i]-a[i])*f
		}
	}
}

// evaluate writes the track's value at cycle progress (0..1) into dst.
// For keyframe tracks it locates the bracketing segment and
// interpolates within it.
func (t *Track) evaluate(progress float64, dst []float32) {
	if !t.Keyframed() {
		lerpInto(dst, t.From, t.To, progress)
		return
	}

	p := float32(progress)
	n := len(t.KeyTimes)
	k := n - 2
	for i := 1; i < n; i++ {
		if t.KeyTimes[i] > p {
			k = i - 1
			break
		}
	}
	t0, t1 := t.KeyTimes[k], t.KeyTimes[k+1]
	var local float64
	if t1 <= t0 {
		local = 1
	} else {
		local = float64((p - t0) / (t1 - t0))
	}
	lerpInto(dst, t.Values[k], t.Values[k+1], local)
}
