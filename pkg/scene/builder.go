package scene

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orrery-engine/orrery/pkg/math"
	"github.com/orrery-engine/orrery/pkg/oml"
)

// ErrUnknownScene is returned when the requested scene id is not in the
// document.
var ErrUnknownScene = errors.New("scene: unknown scene id")

// Graph is a built scene: the shared registry plus what the render loop
// needs to drive a frame. Animations is the document's flattened track
// list with every target resolved to a registered node id, generated
// ids included.
type Graph struct {
	Registry   *Registry
	Roots      []*Node
	Ambient    float32
	Camera     *Node // active camera node, nil when the scene declares none
	Animations []oml.Animate
}

// Builder constructs graphs from parsed documents.
type Builder struct {
	log *zap.Logger
}

// NewBuilder returns a builder. A nil logger disables logging.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{log: log}
}

// Build turns one scene section of a parsed document into a live graph.
// An empty sceneID selects the document's first scene. Nodes are
// created once here and live for the graph's lifetime; everything after
// this call only mutates their fields.
func (b *Builder) Build(doc *oml.Document, sceneID string, backend Backend) (*Graph, error) {
	sc, ok := doc.SceneByID(sceneID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, sceneID)
	}

	g := &Graph{
		Registry: NewRegistry(),
		Ambient:  sc.Ambient,
	}

	for i := range sc.Cameras {
		cam := &sc.Cameras[i]
		node := &Node{
			ID:       ensureID(cam.ID, "camera"),
			Kind:     KindCamera,
			Position: cam.Position,
			Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
		}
		b.register(g, node)
		if err := backend.CreateCamera(node, *cam); err != nil {
			return nil, fmt.Errorf("scene: camera %q: %w", node.ID, err)
		}
		b.collectAnimates(g, node, cam.Animates)
		if g.Camera == nil || (sc.CameraID != "" && cam.ID == sc.CameraID) {
			g.Camera = node
		}
	}

	for i := range sc.Lights {
		light := &sc.Lights[i]
		node := &Node{
			ID:       ensureID(light.ID, "light"),
			Kind:     KindLight,
			Position: light.Position,
			Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
			Color:    light.Color,
			Opacity:  1,
		}
		b.register(g, node)
		if err := backend.CreateLight(node, *light); err != nil {
			return nil, fmt.Errorf("scene: light %q: %w", node.ID, err)
		}
		b.collectAnimates(g, node, light.Animates)
	}

	if err := b.buildItems(doc, g, sc.Items, nil, backend); err != nil {
		return nil, err
	}
	return g, nil
}

func (b *Builder) buildItems(doc *oml.Document, g *Graph, items []oml.Item, parent *Node, backend Backend) error {
	for i := range items {
		it := &items[i]
		node := &Node{
			ID:       ensureID(it.ID, it.Kind.String()),
			Kind:     KindGroup,
			Position: it.Position,
			Rotation: it.Rotation.Radians(),
			Scale:    it.Scale,
			Parent:   parent,
		}
		if it.Kind == oml.ItemMesh {
			node.Kind = KindMesh
			geom := b.resolveGeometry(doc, it.Geometry)
			mat := b.resolveMaterial(doc, it.Material)
			node.Color = mat.Color
			node.Metalness = mat.Metalness
			node.Roughness = mat.Roughness
			node.Opacity = mat.Opacity
			if err := backend.CreateMesh(node, geom, mat); err != nil {
				return fmt.Errorf("scene: mesh %q: %w", node.ID, err)
			}
		}
		b.register(g, node)
		if parent == nil {
			g.Roots = append(g.Roots, node)
		} else {
			parent.Children = append(parent.Children, node)
		}
		b.collectAnimates(g, node, it.Animates)
		if err := b.buildItems(doc, g, it.Children, node, backend); err != nil {
			return err
		}
	}
	return nil
}

// register adds the node to the shared registry. A duplicate id keeps
// the first node addressable and leaves this one unregistered; the
// node still renders, it just cannot be targeted.
func (b *Builder) register(g *Graph, n *Node) {
	if err := g.Registry.Add(n); err != nil {
		b.log.Warn("node not registered",
			zap.String("id", n.ID),
			zap.Stringer("kind", n.Kind),
			zap.Error(err))
	}
}

// collectAnimates appends the element's animate descriptors with their
// target rewritten to the node's registered id, so tracks on anonymous
// elements resolve.
func (b *Builder) collectAnimates(g *Graph, n *Node, animates []oml.Animate) {
	for _, a := range animates {
		a.TargetID = n.ID
		g.Animations = append(g.Animations, a)
	}
}

func (b *Builder) resolveGeometry(doc *oml.Document, ref string) oml.Geometry {
	if ref == "" {
		return oml.DefaultGeometry()
	}
	if geom, ok := doc.GeometryByID(ref); ok {
		return geom
	}
	b.log.Warn("unknown geometry reference, using default", zap.String("geometry", ref))
	return oml.DefaultGeometry()
}

func (b *Builder) resolveMaterial(doc *oml.Document, ref string) oml.Material {
	if ref == "" {
		return oml.DefaultMaterial()
	}
	if mat, ok := doc.MaterialByID(ref); ok {
		return mat
	}
	b.log.Warn("unknown material reference, using default", zap.String("material", ref))
	return oml.DefaultMaterial()
}

// ensureID returns the authored id, or generates one so every node is
// addressable in the registry.
func ensureID(authored, kind string) string {
	if authored != "" {
		return authored
	}
	return kind + "-" + uuid.NewString()[:8]
}
