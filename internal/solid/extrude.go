package solid

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/piwi3910/cellholder/internal/model"
)

// Extrude lifts a triangulated ring set to a closed solid of the given
// height. The bottom face sits at z=0 facing down, the top face at z=height
// facing up, and every ring gets a side wall. Triangles that reference a
// vertex outside the ring set are dropped.
//
// Vertex layout: indices [0,N) are the bottom copies of the ring vertices in
// ring order, [N,2N) the top copies.
func Extrude(rings []model.Ring, triangles []int, height float64) model.Mesh {
	starts := model.RingStarts(rings)
	n := starts[len(starts)-1]

	m := model.Mesh{
		Vertices: make([]v3.Vec, 0, 2*n),
		Faces:    make([]model.Face, 0, 2*len(triangles)/3+2*n),
	}
	for _, z := range []float64{0, height} {
		for _, r := range rings {
			for _, p := range r {
				m.Vertices = append(m.Vertices, v3.Vec{X: p.X, Y: p.Y, Z: z})
			}
		}
	}

	for t := 0; t+2 < len(triangles); t += 3 {
		a, b, c := triangles[t], triangles[t+1], triangles[t+2]
		if !inRange(a, n) || !inRange(b, n) || !inRange(c, n) {
			continue
		}
		m.Faces = append(m.Faces,
			model.Face{c, b, a},
			model.Face{a + n, b + n, c + n},
		)
	}

	for i, r := range rings {
		start, size := starts[i], len(r)
		for k := 0; k < size; k++ {
			i0 := start + k
			i1 := start + (k+1)%size
			m.Faces = append(m.Faces,
				model.Face{i0, i1, i1 + n},
				model.Face{i0, i1 + n, i0 + n},
			)
		}
	}
	return m
}

func inRange(idx, n int) bool {
	return idx >= 0 && idx < n
}

// Build triangulates and extrudes a layout in one step.
func Build(l model.Layout, height float64) (model.Mesh, error) {
	rings := l.Rings()
	tris, err := Triangulate(rings)
	if err != nil {
		return model.Mesh{}, err
	}
	return Extrude(rings, tris, height), nil
}
