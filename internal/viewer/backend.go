package viewer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/orrery-engine/orrery/pkg/math"
	"github.com/orrery-engine/orrery/pkg/oml"
	"github.com/orrery-engine/orrery/pkg/scene"
)

// drawItem is one uploaded mesh bound to its scene node. Material
// scalars are read from the node at draw time so animation shows.
type drawItem struct {
	node       *scene.Node
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	unlit      bool
}

// lightItem is one light bound to its scene node. Position and color
// follow the node; the intensity is fixed at build time.
type lightItem struct {
	node      *scene.Node
	kind      oml.LightType
	intensity float32
}

// cameraItem carries the projection parameters of the active camera.
type cameraItem struct {
	node   *scene.Node
	target math.Vec3
	fov    float32
	near   float32
	far    float32
}

// GLBackend uploads scene visuals to the GPU as the builder walks the
// document. It must be used after the GL context exists.
type GLBackend struct {
	log     *zap.Logger
	items   []drawItem
	lights  []lightItem
	cameras []cameraItem
}

// NewGLBackend returns an empty backend.
func NewGLBackend(log *zap.Logger) *GLBackend {
	return &GLBackend{log: log}
}

// CreateMesh tessellates the geometry and uploads it.
func (b *GLBackend) CreateMesh(n *scene.Node, g oml.Geometry, mat oml.Material) error {
	mesh := Tessellate(g)

	item := drawItem{
		node:       n,
		indexCount: int32(len(mesh.Indices)),
		unlit:      mat.Type == oml.MaterialBasic,
	}

	gl.GenVertexArrays(1, &item.vao)
	gl.BindVertexArray(item.vao)

	gl.GenBuffers(1, &item.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, item.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*4, gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &item.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, item.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)

	// Position at location 0, normal at 1, interleaved.
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 6*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 6*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	b.items = append(b.items, item)
	b.log.Debug("mesh uploaded",
		zap.String("node", n.ID),
		zap.Stringer("geometry", g.Type),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int32("indices", item.indexCount))
	return nil
}

// CreateLight registers a light source.
func (b *GLBackend) CreateLight(n *scene.Node, l oml.Light) error {
	b.lights = append(b.lights, lightItem{
		node:      n,
		kind:      l.Type,
		intensity: l.Intensity,
	})
	b.log.Debug("light registered", zap.String("node", n.ID), zap.Stringer("type", l.Type))
	return nil
}

// CreateCamera records a declared camera's projection. The renderer
// later picks the one bound to the graph's active camera node.
func (b *GLBackend) CreateCamera(n *scene.Node, c oml.Camera) error {
	b.cameras = append(b.cameras, cameraItem{
		node:   n,
		target: c.Target,
		fov:    c.FOV,
		near:   c.Near,
		far:    c.Far,
	})
	b.log.Debug("camera registered", zap.String("node", n.ID), zap.Float32("fov", c.FOV))
	return nil
}

// activeCamera returns the camera item bound to node, the first
// declared when node is unknown, or nil when the scene has none.
func (b *GLBackend) activeCamera(node *scene.Node) *cameraItem {
	for i := range b.cameras {
		if b.cameras[i].node == node {
			return &b.cameras[i]
		}
	}
	if len(b.cameras) > 0 {
		return &b.cameras[0]
	}
	return nil
}

// Close releases every GPU resource the backend created.
func (b *GLBackend) Close() {
	for i := range b.items {
		item := &b.items[i]
		if item.vao != 0 {
			gl.DeleteVertexArrays(1, &item.vao)
		}
		if item.vbo != 0 {
			gl.DeleteBuffers(1, &item.vbo)
		}
		if item.ebo != 0 {
			gl.DeleteBuffers(1, &item.ebo)
		}
	}
	b.items = nil
	b.lights = nil
	b.cameras = nil
}
