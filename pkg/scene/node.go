// Package scene turns parsed OML documents into live scene graphs: one
// mutable Node per document element, all reachable through a shared
// Registry. Visual construction is delegated to a Backend; this package
// owns only the bookkeeping the animation engine and the interaction
// controller mutate every frame.
package scene

import "github.com/orrery-engine/orrery/pkg/math"

// NodeKind identifies what a node was built from.
type NodeKind uint8

// Node kinds.
const (
	KindGroup NodeKind = iota
	KindMesh
	KindLight
	KindCamera
)

// String returns a human-readable kind name.
func (k NodeKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	default:
		return "unknown"
	}
}

// Node is one mutable entry of the scene graph. The animation engine
// and the drag controller write these fields every frame, render
// backends read them. Rotation is Euler angles in radians. Transforms
// are local: nodes never compose their parent chain themselves, that
// is the render backend's job.
type Node struct {
	ID   string
	Kind NodeKind

	Position math.Vec3
	Rotation math.Vec3
	Scale    math.Vec3

	// Material scalars, seeded from the resolved material for meshes
	// and from the light color for lights.
	Color     math.Vec3
	Metalness float32
	Roughness float32
	Opacity   float32

	Parent   *Node
	Children []*Node
}
