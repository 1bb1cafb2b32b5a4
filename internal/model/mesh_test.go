package model

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
)

func tetrahedron() Mesh {
	return Mesh{
		Vertices: []v3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}},
		Faces: []Face{
			{0, 2, 1}, // bottom, facing -z
			{0, 1, 3},
			{1, 2, 3},
			{2, 0, 3},
		},
	}
}

func TestMeshClosedTetrahedron(t *testing.T) {
	m := tetrahedron()
	assert.NoError(t, m.Validate())
	assert.True(t, m.IsClosed())
	assert.InDelta(t, 1.0/6.0, m.Volume(), 1e-12)

	n := m.FaceNormal(0)
	assert.InDelta(t, -1, n.Z, 1e-12)
}

func TestMeshOpenSurface(t *testing.T) {
	m := tetrahedron()
	m.Faces = m.Faces[:3]
	assert.False(t, m.IsClosed())
}

func TestMeshFlippedFaceIsNotClosed(t *testing.T) {
	m := tetrahedron()
	m.Faces[0] = Face{0, 1, 2}
	assert.False(t, m.IsClosed())
}

func TestMeshValidateOutOfRange(t *testing.T) {
	m := tetrahedron()
	m.Faces = append(m.Faces, Face{0, 1, 9})
	assert.Error(t, m.Validate())
	assert.False(t, m.ValidFace(Face{-1, 0, 1}))
}

func TestMeshBounds(t *testing.T) {
	m := tetrahedron()
	min, max := m.Bounds()
	assert.Equal(t, v3.Vec{}, min)
	assert.Equal(t, v3.Vec{X: 1, Y: 1, Z: 1}, max)

	var empty Mesh
	assert.False(t, empty.IsClosed())
}

func TestDegenerateFaceNormal(t *testing.T) {
	m := Mesh{
		Vertices: []v3.Vec{{X: 0}, {X: 1}, {X: 2}},
		Faces:    []Face{{0, 1, 2}},
	}
	assert.Equal(t, v3.Vec{}, m.FaceNormal(0))
}
