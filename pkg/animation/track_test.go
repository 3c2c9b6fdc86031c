package animation

import (
	"errors"
	"math"
	"testing"
)

func TestRegisterTrack_Validation(t *testing.T) {
	valid := Track{
		TargetID: "cube",
		Property: Position,
		From:     []float32{0, 0, 0},
		To:       []float32{1, 1, 1},
		Duration: 1,
		Repeat:   1,
	}
	validKeyed := Track{
		TargetID: "cube",
		Property: Opacity,
		Values:   [][]float32{{0}, {1}, {0}},
		KeyTimes: []float32{0, 0.25, 1},
		Duration: 2,
		Repeat:   1,
	}

	tests := []struct {
		name   string
		mutate func(tr *Track)
		keyed  bool
		wantOK bool
	}{
		{name: "simple ok", mutate: func(tr *Track) {}, wantOK: true},
		{name: "keyframe ok", mutate: func(tr *Track) {}, keyed: true, wantOK: true},
		{name: "indefinite repeat ok", mutate: func(tr *Track) { tr.Repeat = RepeatIndefinite }, wantOK: true},
		{name: "empty target", mutate: func(tr *Track) { tr.TargetID = "" }},
		{name: "unknown property", mutate: func(tr *Track) { tr.Property = Property(99); tr.From = []float32{0}; tr.To = []float32{1} }},
		{name: "both modes", mutate: func(tr *Track) { tr.Values = [][]float32{{0, 0, 0}, {1, 1, 1}}; tr.KeyTimes = []float32{0, 1} }},
		{name: "neither mode", mutate: func(tr *Track) { tr.From = nil; tr.To = nil }},
		{name: "from arity", mutate: func(tr *Track) { tr.From = []float32{0, 0} }},
		{name: "to arity", mutate: func(tr *Track) { tr.To = []float32{1} }},
		{name: "keyframe arity", mutate: func(tr *Track) { tr.Values[1] = []float32{1, 2} }, keyed: true},
		{name: "single keyframe", mutate: func(tr *Track) { tr.Values = tr.Values[:1]; tr.KeyTimes = tr.KeyTimes[:1] }, keyed: true},
		{name: "keyTimes length mismatch", mutate: func(tr *Track) { tr.KeyTimes = tr.KeyTimes[:2] }, keyed: true},
		{name: "keyTimes not from 0", mutate: func(tr *Track) { tr.KeyTimes = []float32{0.1, 0.5, 1} }, keyed: true},
		{name: "keyTimes not to 1", mutate: func(tr *Track) { tr.KeyTimes = []float32{0, 0.5, 0.9} }, keyed: true},
		{name: "keyTimes decreasing", mutate: func(tr *Track) { tr.KeyTimes = []float32{0, 0.6, 0.4} }, keyed: true},
		{name: "keyTimes NaN", mutate: func(tr *Track) { tr.KeyTimes = []float32{0, float32(math.NaN()), 1} }, keyed: true},
		{name: "zero duration", mutate: func(tr *Track) { tr.Duration = 0 }},
		{name: "negative duration", mutate: func(tr *Track) { tr.Duration = -2 }},
		{name: "NaN duration", mutate: func(tr *Track) { tr.Duration = math.NaN() }},
		{name: "infinite duration", mutate: func(tr *Track) { tr.Duration = math.Inf(1) }},
		{name: "negative delay", mutate: func(tr *Track) { tr.Delay = -0.5 }},
		{name: "NaN delay", mutate: func(tr *Track) { tr.Delay = math.NaN() }},
		{name: "zero repeat", mutate: func(tr *Track) { tr.Repeat = 0 }},
		{name: "negative repeat", mutate: func(tr *Track) { tr.Repeat = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			if tt.keyed {
				tr = validKeyed
				tr.Values = [][]float32{{0}, {1}, {0}}
				tr.KeyTimes = []float32{0, 0.25, 1}
			}
			tt.mutate(&tr)

			e := NewEngine(Config{})
			err := e.RegisterTrack(tr)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("RegisterTrack: %v", err)
				}
				if e.TrackCount() != 1 {
					t.Fatalf("TrackCount = %d, want 1", e.TrackCount())
				}
				return
			}
			if !errors.Is(err, ErrInvalidDescriptor) {
				t.Fatalf("error = %v, want ErrInvalidDescriptor", err)
			}
			if e.TrackCount() != 0 {
				t.Fatalf("TrackCount = %d after rejection, want 0", e.TrackCount())
			}
		})
	}
}

func TestTrackEvaluate_KeyframeSegments(t *testing.T) {
	tr := Track{
		Property: Opacity,
		Values:   [][]float32{{0}, {4}, {8}, {2}},
		KeyTimes: []float32{0, 0.25, 0.5, 1},
	}

	tests := []struct {
		progress float64
		want     float32
	}{
		{0, 0},
		{0.125, 2},
		{0.25, 4},
		{0.375, 6},
		{0.5, 8},
		{0.75, 5},
		{1, 2},
	}
	dst := make([]float32, 1)
	for _, tt := range tests {
		tr.evaluate(tt.progress, dst)
		if dst[0] != tt.want {
			t.Errorf("evaluate(%v) = %v, want %v", tt.progress, dst[0], tt.want)
		}
	}
}

func TestTrackEvaluate_DuplicateKeyTimes(t *testing.T) {
	// A repeated keyTime is a step: sampling at it lands on the later
	// value.
	tr := Track{
		Property: Opacity,
		Values:   [][]float32{{0}, {3}, {7}, {10}},
		KeyTimes: []float32{0, 0.5, 0.5, 1},
	}

	dst := make([]float32, 1)
	tr.evaluate(0.4, dst)
	if got := dst[0]; got != 2.4 {
		t.Errorf("evaluate(0.4) = %v, want 2.4", got)
	}
	tr.evaluate(0.5, dst)
	if got := dst[0]; got != 7 {
		t.Errorf("evaluate(0.5) = %v, want the later step value 7", got)
	}
	tr.evaluate(0.75, dst)
	if got := dst[0]; got != 8.5 {
		t.Errorf("evaluate(0.75) = %v, want 8.5", got)
	}
}
