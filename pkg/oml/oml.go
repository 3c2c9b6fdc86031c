// Package oml parses Orrery Markup Language documents: declarative XML
// scene descriptions carrying geometry and material definitions, nested
// mesh/group hierarchies, lights, cameras and SMIL-style animate elements.
package oml

import (
	"errors"
	"fmt"

	"github.com/orrery-engine/orrery/pkg/math"
)

// Structural document errors. Anything wrapped in ErrInvalidDocument is
// fatal: the document failed to load. Content-level problems (unknown
// types, malformed attributes) degrade to defaults instead and are
// recorded on the Document.
var ErrInvalidDocument = errors.New("oml: invalid document")

// RepeatIndefinite marks an animate element with repeatCount="indefinite".
const RepeatIndefinite = -1

// GeometryType identifies a primitive shape.
type GeometryType uint8

// Geometry type constants. Unknown document values fall back to box.
const (
	GeometryBox GeometryType = iota
	GeometrySphere
	GeometryPlane
	GeometryCylinder
	GeometryCone
	GeometryTorus
)

// String returns the document spelling of the geometry type.
func (t GeometryType) String() string {
	switch t {
	case GeometryBox:
		return "box"
	case GeometrySphere:
		return "sphere"
	case GeometryPlane:
		return "plane"
	case GeometryCylinder:
		return "cylinder"
	case GeometryCone:
		return "cone"
	case GeometryTorus:
		return "torus"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// MaterialType identifies a shading model.
type MaterialType uint8

// Material type constants. Unknown document values fall back to standard.
const (
	// MaterialStandard is lit by scene lights.
	MaterialStandard MaterialType = iota
	// MaterialBasic is unlit flat color.
	MaterialBasic
)

// String returns the document spelling of the material type.
func (t MaterialType) String() string {
	switch t {
	case MaterialStandard:
		return "standard"
	case MaterialBasic:
		return "basic"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// LightType identifies a light source kind.
type LightType uint8

// Light type constants. Unknown document values fall back to directional.
const (
	LightDirectional LightType = iota
	LightPoint
	LightAmbient
)

// String returns the document spelling of the light type.
func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightAmbient:
		return "ambient"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ItemKind distinguishes the two hierarchy element kinds.
type ItemKind uint8

// Item kinds.
const (
	ItemMesh ItemKind = iota
	ItemGroup
)

// String returns the document spelling of the item kind.
func (k ItemKind) String() string {
	if k == ItemGroup {
		return "group"
	}
	return "mesh"
}

// Degradation records a lenient fallback taken while parsing: an unknown
// type value, a malformed attribute, an element that does not belong
// where it appeared. The document still loads; the record makes the
// fallback observable.
type Degradation struct {
	Element string // element name
	ID      string // element id, if authored
	Attr    string // offending attribute, empty for element-level records
	Reason  string
}

// String formats the degradation for logs and tool output.
func (d Degradation) String() string {
	loc := d.Element
	if d.ID != "" {
		loc += "#" + d.ID
	}
	if d.Attr != "" {
		loc += "@" + d.Attr
	}
	return loc + ": " + d.Reason
}

// Geometry is a named primitive definition from the defs section.
type Geometry struct {
	ID       string
	Type     GeometryType
	Size     math.Vec3 // box, plane
	Radius   float32   // sphere, cylinder, cone, torus
	Tube     float32   // torus ring thickness
	Height   float32   // cylinder, cone
	Segments int
}

// DefaultGeometry returns the geometry used when a mesh references no
// definition or an unknown one.
func DefaultGeometry() Geometry {
	return Geometry{
		Type:     GeometryBox,
		Size:     math.Vec3{X: 1, Y: 1, Z: 1},
		Radius:   0.5,
		Tube:     0.2,
		Height:   1,
		Segments: 24,
	}
}

// Material is a named surface definition from the defs section.
type Material struct {
	ID        string
	Type      MaterialType
	Color     math.Vec3 // RGB in [0,1]
	Metalness float32
	Roughness float32
	Opacity   float32
}

// DefaultMaterial returns the material used when a mesh references no
// definition or an unknown one.
func DefaultMaterial() Material {
	return Material{
		Type:      MaterialStandard,
		Color:     math.Vec3{X: 0.8, Y: 0.8, Z: 0.8},
		Metalness: 0,
		Roughness: 0.5,
		Opacity:   1,
	}
}

// Camera is a viewpoint declared inside a scene.
type Camera struct {
	ID       string
	Position math.Vec3
	Target   math.Vec3
	FOV      float32 // vertical, degrees
	Near     float32
	Far      float32
	Animates []Animate
}

// Light is a light source declared inside a scene.
type Light struct {
	ID        string
	Type      LightType
	Color     math.Vec3
	Intensity float32
	Position  math.Vec3 // for directional lights this is the source direction
	Animates  []Animate
}

// Item is one element of the scene hierarchy: a mesh or a group.
// Groups nest recursively; meshes are leaves. Rotation is stored in
// degrees exactly as authored.
type Item struct {
	Kind     ItemKind
	ID       string
	Geometry string // geometry definition reference, meshes only
	Material string // material definition reference, meshes only
	Position math.Vec3
	Rotation math.Vec3
	Scale    math.Vec3
	Animates []Animate
	Children []Item
}

// Animate is one parsed animate element. Numeric timing is already
// coerced to seconds; value vectors keep the document's units and
// arities untouched (the animation engine validates them at
// registration). TargetID is the authored id of the owning element and
// is empty when the owner is anonymous.
type Animate struct {
	TargetID  string
	Attribute string      // attributeName as authored
	From      []float32   // simple mode
	To        []float32   // simple mode
	Values    [][]float32 // keyframe mode
	KeyTimes  []float32   // keyframe mode, [0,1]
	Dur       float64     // seconds
	Begin     float64     // seconds
	Repeat    int         // count, or RepeatIndefinite
	Fill      string      // "freeze" or "remove"
}

// Keyframed reports whether the element was authored in keyframe mode.
func (a Animate) Keyframed() bool {
	return len(a.Values) > 0 || len(a.KeyTimes) > 0
}

// Scene is one scene section of the document.
type Scene struct {
	ID       string
	Ambient  float32
	CameraID string // active camera reference
	Cameras  []Camera
	Lights   []Light
	Items    []Item
}

// Animations returns the document's flat animation list for this scene:
// every animate element in document order, tagged with its owning
// element's authored id. Elements without an authored id contribute
// descriptors with an empty TargetID; the scene builder substitutes its
// generated ids when the scene is built.
func (s *Scene) Animations() []Animate {
	var out []Animate
	for _, c := range s.Cameras {
		out = append(out, c.Animates...)
	}
	for _, l := range s.Lights {
		out = append(out, l.Animates...)
	}
	var walk func(items []Item)
	walk = func(items []Item) {
		for _, it := range items {
			out = append(out, it.Animates...)
			walk(it.Children)
		}
	}
	walk(s.Items)
	return out
}

// Camera returns the scene's active camera: the one referenced by the
// scene's camera attribute, else the first declared, else nil.
func (s *Scene) Camera() *Camera {
	for i := range s.Cameras {
		if s.Cameras[i].ID == s.CameraID {
			return &s.Cameras[i]
		}
	}
	if len(s.Cameras) > 0 {
		return &s.Cameras[0]
	}
	return nil
}

// Document is a fully parsed OML document.
type Document struct {
	Geometries   []Geometry
	Materials    []Material
	Scenes       []Scene
	Degradations []Degradation
}

// GeometryByID looks up a geometry definition.
func (d *Document) GeometryByID(id string) (Geometry, bool) {
	for _, g := range d.Geometries {
		if g.ID == id {
			return g, true
		}
	}
	return Geometry{}, false
}

// MaterialByID looks up a material definition.
func (d *Document) MaterialByID(id string) (Material, bool) {
	for _, m := range d.Materials {
		if m.ID == id {
			return m, true
		}
	}
	return Material{}, false
}

// SceneByID looks up a scene section. An empty id selects the first scene.
func (d *Document) SceneByID(id string) (*Scene, bool) {
	if id == "" && len(d.Scenes) > 0 {
		return &d.Scenes[0], true
	}
	for i := range d.Scenes {
		if d.Scenes[i].ID == id {
			return &d.Scenes[i], true
		}
	}
	return nil, false
}
