package scene

import "github.com/orrery-engine/orrery/pkg/oml"

// Backend receives the visual side of scene construction. The builder
// creates and registers nodes itself and only tells the backend what
// each one should look like; per-frame state then flows through the
// node pointers the backend kept. A backend error aborts the build.
type Backend interface {
	CreateMesh(node *Node, geom oml.Geometry, mat oml.Material) error
	CreateLight(node *Node, light oml.Light) error
	CreateCamera(node *Node, cam oml.Camera) error
}

// NullBackend discards every visual. Tests and the inspection CLI build
// scenes with it.
type NullBackend struct{}

// CreateMesh implements Backend.
func (NullBackend) CreateMesh(*Node, oml.Geometry, oml.Material) error { return nil }

// CreateLight implements Backend.
func (NullBackend) CreateLight(*Node, oml.Light) error { return nil }

// CreateCamera implements Backend.
func (NullBackend) CreateCamera(*Node, oml.Camera) error { return nil }
