package animation

import (
	"fmt"

	"github.com/orrery-engine/orrery/pkg/math"
	"github.com/orrery-engine/orrery/pkg/scene"
)

// Property enumerates the node fields a track may write. The set is
// closed: registration rejects anything outside it, there is no
// reflective path mutation.
type Property uint8

// Animatable properties.
const (
	Position Property = iota
	Rotation
	Scale
	Color
	Metalness
	Roughness
	Opacity
)

// Arity returns the vector length the property expects.
func (p Property) Arity() int {
	switch p {
	case Position, Rotation, Scale, Color:
		return 3
	default:
		return 1
	}
}

// String returns the document spelling of the property.
func (p Property) String() string {
	switch p {
	case Position:
		return "position"
	case Rotation:
		return "rotation"
	case Scale:
		return "scale"
	case Color:
		return "color"
	case Metalness:
		return "metalness"
	case Roughness:
		return "roughness"
	case Opacity:
		return "opacity"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

// ParseProperty maps a document attributeName onto the property set.
func ParseProperty(s string) (Property, bool) {
	switch s {
	case "position":
		return Position, true
	case "rotation":
		return Rotation, true
	case "scale":
		return Scale, true
	case "color":
		return Color, true
	case "metalness":
		return Metalness, true
	case "roughness":
		return Roughness, true
	case "opacity":
		return Opacity, true
	default:
		return 0, false
	}
}

// apply writes v into the node field selected by p. The length guard
// keeps a corrupted track from panicking the frame; validation normally
// rules it out.
func apply(n *scene.Node, p Property, v []float32) bool {
	if len(v) < p.Arity() {
		return false
	}
	switch p {
	case Position:
		n.Position = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	case Rotation:
		n.Rotation = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	case Scale:
		n.Scale = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	case Color:
		n.Color = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	case Metalness:
		n.Metalness = v[0]
	case Roughness:
		n.Roughness = v[0]
	case Opacity:
		n.Opacity = v[0]
	default:
		return false
	}
	return true
}

// read captures the node's current value of p, the pre-animation
// baseline a fill="remove" track restores.
func read(n *scene.Node, p Property) []float32 {
	switch p {
	case Position:
		return []float32{n.Position.X, n.Position.Y, n.Position.Z}
	case Rotation:
		return []float32{n.Rotation.X, n.Rotation.Y, n.Rotation.Z}
	case Scale:
		return []float32{n.Scale.X, n.Scale.Y, n.Scale.Z}
	case Color:
		return []float32{n.Color.X, n.Color.Y, n.Color.Z}
	case Metalness:
		return []float32{n.Metalness}
	case Roughness:
		return []float32{n.Roughness}
	case Opacity:
		return []float32{n.Opacity}
	default:
		return nil
	}
}
