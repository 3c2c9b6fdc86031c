// Package interact turns pointer input into scene-graph mutation. The
// drag controller shares its target nodes with the animation engine;
// neither coordinates with the other, whichever writes later in a
// frame wins.
package interact

import (
	"github.com/orrery-engine/orrery/pkg/math"
	"github.com/orrery-engine/orrery/pkg/scene"
)

// DefaultSensitivity maps pointer pixels to radians.
const DefaultSensitivity = 0.005

// DragController accumulates pointer-drag deltas into an orientation
// and writes it to one node's rotation. A drag sample yaws around Y
// and pitches around X; each write replaces the node's full rotation,
// roll included.
type DragController struct {
	registry *scene.Registry
	targetID string

	sensitivity float32
	pitch       float32
	yaw         float32
}

// NewDragController returns a controller writing to targetID through
// reg. A sensitivity of 0 selects DefaultSensitivity.
func NewDragController(reg *scene.Registry, targetID string, sensitivity float32) *DragController {
	if sensitivity == 0 {
		sensitivity = DefaultSensitivity
	}
	return &DragController{
		registry:    reg,
		targetID:    targetID,
		sensitivity: sensitivity,
	}
}

// HandleDrag folds one pointer sample into the orientation and writes
// it out. A target missing from the registry is skipped.
func (d *DragController) HandleDrag(deltaX, deltaY float32) {
	d.yaw -= deltaX * d.sensitivity
	d.pitch += deltaY * d.sensitivity
	d.write()
}

// SetSensitivity changes the pixel-to-radian scale for future samples.
func (d *DragController) SetSensitivity(s float32) {
	if s == 0 {
		s = DefaultSensitivity
	}
	d.sensitivity = s
}

// SetTarget redirects future writes to another node.
func (d *DragController) SetTarget(targetID string) {
	d.targetID = targetID
}

// Orientation returns the accumulated (pitch, yaw) in radians.
func (d *DragController) Orientation() (pitch, yaw float32) {
	return d.pitch, d.yaw
}

// Reset zeroes the orientation and writes it to the target
// immediately.
func (d *DragController) Reset() {
	d.pitch = 0
	d.yaw = 0
	d.write()
}

func (d *DragController) write() {
	n, ok := d.registry.Lookup(d.targetID)
	if !ok {
		return
	}
	n.Rotation = math.Vec3{X: d.pitch, Y: d.yaw}
}
