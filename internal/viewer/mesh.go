package viewer

import (
	"github.com/chewxy/math32"

	"github.com/orrery-engine/orrery/pkg/oml"
)

// Mesh is tessellated geometry ready for upload: interleaved position
// and normal, six floats per vertex, indexed triangles.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 6
}

func (m *Mesh) vert(px, py, pz, nx, ny, nz float32) {
	m.Vertices = append(m.Vertices, px, py, pz, nx, ny, nz)
}

func (m *Mesh) quad(a, b, c, d uint32) {
	m.Indices = append(m.Indices, a, b, c, a, c, d)
}

// Tessellate builds the mesh for a geometry definition. Unknown types
// have already been degraded to boxes by the parser.
func Tessellate(g oml.Geometry) Mesh {
	seg := g.Segments
	if seg < 3 {
		seg = 3
	}
	switch g.Type {
	case oml.GeometrySphere:
		return sphereMesh(g.Radius, seg)
	case oml.GeometryPlane:
		return planeMesh(g.Size.X, g.Size.Z)
	case oml.GeometryCylinder:
		return cylinderMesh(g.Radius, g.Height, seg)
	case oml.GeometryCone:
		return coneMesh(g.Radius, g.Height, seg)
	case oml.GeometryTorus:
		return torusMesh(g.Radius, g.Tube, seg)
	default:
		return boxMesh(g.Size.X, g.Size.Y, g.Size.Z)
	}
}

func boxMesh(sx, sy, sz float32) Mesh {
	hx, hy, hz := sx/2, sy/2, sz/2
	var m Mesh

	faces := [6]struct {
		n [3]float32
		v [4][3]float32
	}{
		{n: [3]float32{1, 0, 0}, v: [4][3]float32{{hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}, {hx, -hy, hz}}},
		{n: [3]float32{-1, 0, 0}, v: [4][3]float32{{-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}, {-hx, -hy, -hz}}},
		{n: [3]float32{0, 1, 0}, v: [4][3]float32{{-hx, hy, -hz}, {-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}}},
		{n: [3]float32{0, -1, 0}, v: [4][3]float32{{-hx, -hy, hz}, {-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}}},
		{n: [3]float32{0, 0, 1}, v: [4][3]float32{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{n: [3]float32{0, 0, -1}, v: [4][3]float32{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
	}

	for _, f := range faces {
		base := uint32(m.VertexCount())
		for _, p := range f.v {
			m.vert(p[0], p[1], p[2], f.n[0], f.n[1], f.n[2])
		}
		m.quad(base, base+1, base+2, base+3)
	}
	return m
}

func sphereMesh(radius float32, segments int) Mesh {
	rings := segments / 2
	if rings < 2 {
		rings = 2
	}
	var m Mesh

	for i := 0; i <= rings; i++ {
		phi := -math32.Pi/2 + math32.Pi*float32(i)/float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)
		for j := 0; j <= segments; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)
			nx := cosPhi * cosTheta
			ny := sinPhi
			nz := cosPhi * sinTheta
			m.vert(radius*nx, radius*ny, radius*nz, nx, ny, nz)
		}
	}

	stride := uint32(segments + 1)
	for i := 0; i < rings; i++ {
		for j := 0; j < segments; j++ {
			a := uint32(i)*stride + uint32(j)
			b := a + stride
			m.quad(a, b, b+1, a+1)
		}
	}
	return m
}

func planeMesh(sx, sz float32) Mesh {
	hx, hz := sx/2, sz/2
	var m Mesh
	m.vert(-hx, 0, -hz, 0, 1, 0)
	m.vert(-hx, 0, hz, 0, 1, 0)
	m.vert(hx, 0, hz, 0, 1, 0)
	m.vert(hx, 0, -hz, 0, 1, 0)
	m.quad(0, 1, 2, 3)
	return m
}

func cylinderMesh(radius, height float32, segments int) Mesh {
	hy := height / 2
	var m Mesh

	// Side wall, normals radial.
	for j := 0; j <= segments; j++ {
		theta := 2 * math32.Pi * float32(j) / float32(segments)
		sinTheta, cosTheta := math32.Sincos(theta)
		m.vert(radius*cosTheta, -hy, radius*sinTheta, cosTheta, 0, sinTheta)
		m.vert(radius*cosTheta, hy, radius*sinTheta, cosTheta, 0, sinTheta)
	}
	for j := 0; j < segments; j++ {
		a := uint32(2 * j)
		m.quad(a, a+2, a+3, a+1)
	}

	capRing(&m, radius, hy, segments, 1)
	capRing(&m, radius, -hy, segments, -1)
	return m
}

// capRing appends a fan-capped disc at height y facing dir (+1 up).
func capRing(m *Mesh, radius, y float32, segments int, dir float32) {
	center := uint32(m.VertexCount())
	m.vert(0, y, 0, 0, dir, 0)
	for j := 0; j <= segments; j++ {
		theta := 2 * math32.Pi * float32(j) / float32(segments)
		sinTheta, cosTheta := math32.Sincos(theta)
		m.vert(radius*cosTheta, y, radius*sinTheta, 0, dir, 0)
	}
	for j := 0; j < segments; j++ {
		a := center + 1 + uint32(j)
		if dir > 0 {
			m.Indices = append(m.Indices, center, a+1, a)
		} else {
			m.Indices = append(m.Indices, center, a, a+1)
		}
	}
}

func coneMesh(radius, height float32, segments int) Mesh {
	hy := height / 2
	slant := math32.Sqrt(radius*radius + height*height)
	var m Mesh

	// Side, apex vertex repeated per segment so its normal follows the
	// surface.
	for j := 0; j <= segments; j++ {
		theta := 2 * math32.Pi * float32(j) / float32(segments)
		sinTheta, cosTheta := math32.Sincos(theta)
		nx := height * cosTheta / slant
		ny := radius / slant
		nz := height * sinTheta / slant
		m.vert(radius*cosTheta, -hy, radius*sinTheta, nx, ny, nz)
		m.vert(0, hy, 0, nx, ny, nz)
	}
	for j := 0; j < segments; j++ {
		a := uint32(2 * j)
		m.Indices = append(m.Indices, a, a+2, a+1)
	}

	capRing(&m, radius, -hy, segments, -1)
	return m
}

func torusMesh(radius, tube float32, segments int) Mesh {
	minor := segments / 2
	if minor < 3 {
		minor = 3
	}
	var m Mesh

	for i := 0; i <= segments; i++ {
		u := 2 * math32.Pi * float32(i) / float32(segments)
		sinU, cosU := math32.Sincos(u)
		for j := 0; j <= minor; j++ {
			v := 2 * math32.Pi * float32(j) / float32(minor)
			sinV, cosV := math32.Sincos(v)
			r := radius + tube*cosV
			m.vert(r*cosU, tube*sinV, r*sinU, cosV*cosU, sinV, cosV*sinU)
		}
	}

	stride := uint32(minor + 1)
	for i := 0; i < segments; i++ {
		for j := 0; j < minor; j++ {
			a := uint32(i)*stride + uint32(j)
			b := a + stride
			m.quad(a, b, b+1, a+1)
		}
	}
	return m
}
