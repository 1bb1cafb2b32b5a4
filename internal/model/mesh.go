package model

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is a triangle given as three vertex indices, counter-clockwise when
// viewed from outside the solid.
type Face [3]int

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []v3.Vec
	Faces    []Face
}

// FaceNormal returns the unit normal of face i computed from its winding.
// Degenerate faces yield the zero vector.
func (m *Mesh) FaceNormal(i int) v3.Vec {
	f := m.Faces[i]
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Length() == 0 {
		return v3.Vec{}
	}
	return n.Normalize()
}

// ValidFace reports whether every index of f references an existing vertex.
func (m *Mesh) ValidFace(f Face) bool {
	for _, idx := range f {
		if idx < 0 || idx >= len(m.Vertices) {
			return false
		}
	}
	return true
}

// Validate returns an error for the first face referencing a missing vertex.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		if !m.ValidFace(f) {
			return fmt.Errorf("face %d references vertex outside [0,%d): %v", i, len(m.Vertices), f)
		}
	}
	return nil
}

type edgeKey struct{ a, b int }

// IsClosed reports whether the mesh is a closed, consistently oriented
// surface: every directed edge appears exactly once and its reverse also
// appears exactly once.
func (m *Mesh) IsClosed() bool {
	if len(m.Faces) == 0 {
		return false
	}
	directed := make(map[edgeKey]int, len(m.Faces)*3)
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			directed[edgeKey{f[k], f[(k+1)%3]}]++
		}
	}
	for e, n := range directed {
		if n != 1 {
			return false
		}
		if directed[edgeKey{e.b, e.a}] != 1 {
			return false
		}
	}
	return true
}

// Volume returns the enclosed volume using the divergence theorem. The
// result is positive for outward-facing windings.
func (m *Mesh) Volume() float64 {
	var vol float64
	for _, f := range m.Faces {
		if !m.ValidFace(f) {
			continue
		}
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		vol += a.Dot(b.Cross(c))
	}
	return vol / 6
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (min, max v3.Vec) {
	if len(m.Vertices) == 0 {
		return v3.Vec{}, v3.Vec{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}
