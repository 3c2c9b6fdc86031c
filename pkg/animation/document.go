package animation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/orrery-engine/orrery/pkg/oml"
)

// TrackFromAnimate maps a parsed animate element onto a Track. The
// attribute name must belong to the animatable property set; shape and
// timing checks happen later, at registration.
func TrackFromAnimate(a oml.Animate) (Track, error) {
	p, ok := ParseProperty(a.Attribute)
	if !ok {
		return Track{}, fmt.Errorf("%w: %s: unknown attribute %q", ErrInvalidDescriptor, a.TargetID, a.Attribute)
	}
	fill := FillFreeze
	if a.Fill == "remove" {
		fill = FillRemove
	}
	return Track{
		TargetID: a.TargetID,
		Property: p,
		From:     a.From,
		To:       a.To,
		Values:   a.Values,
		KeyTimes: a.KeyTimes,
		Duration: a.Dur,
		Delay:    a.Begin,
		Repeat:   a.Repeat,
		Fill:     fill,
	}, nil
}

// RegisterAnimations converts and registers every animate descriptor
// collected from a built scene. Rejected descriptors are logged and
// skipped; the return value is how many tracks were accepted.
func (e *Engine) RegisterAnimations(animates []oml.Animate) int {
	accepted := 0
	for _, a := range animates {
		t, err := TrackFromAnimate(a)
		if err == nil {
			err = e.RegisterTrack(t)
		}
		if err != nil {
			e.log.Warn("animation rejected", zap.Error(err))
			continue
		}
		accepted++
	}
	return accepted
}
