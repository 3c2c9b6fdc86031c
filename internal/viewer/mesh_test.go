package viewer

import (
	"math"
	"testing"

	omath "github.com/orrery-engine/orrery/pkg/math"
	"github.com/orrery-engine/orrery/pkg/oml"
)

func checkIndices(t *testing.T, m Mesh) {
	t.Helper()
	if len(m.Indices)%3 != 0 {
		t.Fatalf("index count %d not a multiple of 3", len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			t.Fatalf("index %d at %d out of range (%d vertices)", idx, i, n)
		}
	}
}

func checkUnitNormals(t *testing.T, m Mesh) {
	t.Helper()
	for i := 0; i < m.VertexCount(); i++ {
		n := omath.Vec3{X: m.Vertices[i*6+3], Y: m.Vertices[i*6+4], Z: m.Vertices[i*6+5]}
		if l := n.Length(); math.Abs(float64(l)-1) > 1e-4 {
			t.Fatalf("vertex %d normal %v has length %v", i, n, l)
		}
	}
}

func TestTessellate_Box(t *testing.T) {
	g := oml.DefaultGeometry()
	g.Size = omath.Vec3{X: 2, Y: 4, Z: 6}

	m := Tessellate(g)
	if m.VertexCount() != 24 {
		t.Errorf("vertex count = %d, want 24", m.VertexCount())
	}
	if len(m.Indices) != 36 {
		t.Errorf("index count = %d, want 36", len(m.Indices))
	}
	checkIndices(t, m)
	checkUnitNormals(t, m)

	for i := 0; i < m.VertexCount(); i++ {
		x, y, z := m.Vertices[i*6], m.Vertices[i*6+1], m.Vertices[i*6+2]
		if abs32(x) != 1 || abs32(y) != 2 || abs32(z) != 3 {
			t.Fatalf("vertex %d = (%v,%v,%v), want corner of 2x4x6 box", i, x, y, z)
		}
	}
}

func TestTessellate_Sphere(t *testing.T) {
	m := Tessellate(oml.Geometry{Type: oml.GeometrySphere, Radius: 2, Segments: 16})
	checkIndices(t, m)
	checkUnitNormals(t, m)

	for i := 0; i < m.VertexCount(); i++ {
		p := omath.Vec3{X: m.Vertices[i*6], Y: m.Vertices[i*6+1], Z: m.Vertices[i*6+2]}
		if d := p.Length(); math.Abs(float64(d)-2) > 1e-4 {
			t.Fatalf("vertex %d at distance %v, want on radius-2 shell", i, d)
		}
	}
}

func TestTessellate_Plane(t *testing.T) {
	m := Tessellate(oml.Geometry{Type: oml.GeometryPlane, Size: omath.Vec3{X: 10, Y: 0, Z: 4}})
	if m.VertexCount() != 4 {
		t.Errorf("vertex count = %d, want 4", m.VertexCount())
	}
	checkIndices(t, m)

	for i := 0; i < m.VertexCount(); i++ {
		if y := m.Vertices[i*6+1]; y != 0 {
			t.Errorf("vertex %d y = %v, want 0", i, y)
		}
		if ny := m.Vertices[i*6+4]; ny != 1 {
			t.Errorf("vertex %d normal.y = %v, want 1", i, ny)
		}
	}
}

func TestTessellate_Cylinder(t *testing.T) {
	m := Tessellate(oml.Geometry{Type: oml.GeometryCylinder, Radius: 1, Height: 3, Segments: 12})
	checkIndices(t, m)
	checkUnitNormals(t, m)

	for i := 0; i < m.VertexCount(); i++ {
		x, y, z := m.Vertices[i*6], m.Vertices[i*6+1], m.Vertices[i*6+2]
		if abs32(y) > 1.5 {
			t.Fatalf("vertex %d outside height: y = %v", i, y)
		}
		if r := math.Hypot(float64(x), float64(z)); r > 1+1e-4 {
			t.Fatalf("vertex %d outside radius: %v", i, r)
		}
	}
}

func TestTessellate_Cone(t *testing.T) {
	m := Tessellate(oml.Geometry{Type: oml.GeometryCone, Radius: 1, Height: 2, Segments: 12})
	checkIndices(t, m)
	checkUnitNormals(t, m)

	foundApex := false
	for i := 0; i < m.VertexCount(); i++ {
		x, y, z := m.Vertices[i*6], m.Vertices[i*6+1], m.Vertices[i*6+2]
		if x == 0 && z == 0 && y == 1 {
			foundApex = true
		}
		if y < -1 || y > 1 {
			t.Fatalf("vertex %d outside height: y = %v", i, y)
		}
	}
	if !foundApex {
		t.Error("no apex vertex at (0,1,0)")
	}
}

func TestTessellate_Torus(t *testing.T) {
	m := Tessellate(oml.Geometry{Type: oml.GeometryTorus, Radius: 3, Tube: 0.5, Segments: 16})
	checkIndices(t, m)
	checkUnitNormals(t, m)

	// Every vertex sits on the tube surface around the major circle.
	for i := 0; i < m.VertexCount(); i++ {
		x, y, z := m.Vertices[i*6], m.Vertices[i*6+1], m.Vertices[i*6+2]
		ring := math.Hypot(float64(x), float64(z)) - 3
		d := math.Hypot(ring, float64(y))
		if math.Abs(d-0.5) > 1e-4 {
			t.Fatalf("vertex %d at tube distance %v, want 0.5", i, d)
		}
	}
}

func TestTessellate_ClampsSegments(t *testing.T) {
	m := Tessellate(oml.Geometry{Type: oml.GeometrySphere, Radius: 1})
	if m.VertexCount() == 0 {
		t.Fatal("zero segments produced an empty mesh")
	}
	checkIndices(t, m)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
