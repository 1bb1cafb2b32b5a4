// Package solid turns a 2D ring set into a closed 3D mesh.
package solid

import (
	"fmt"

	"github.com/rclancey/earcut"

	"github.com/piwi3910/cellholder/internal/model"
)

// Triangulate runs ear clipping over a ring set (ring 0 is the outer
// boundary, the rest are holes) and returns a flat list of vertex-index
// triples into the concatenated ring vertices. Every triangle is returned
// counter-clockwise.
func Triangulate(rings []model.Ring) ([]int, error) {
	if len(rings) == 0 || len(rings[0]) < 3 {
		return nil, fmt.Errorf("outer ring needs at least 3 points")
	}

	starts := model.RingStarts(rings)
	total := starts[len(starts)-1]
	coords := make([]float64, 0, total*2)
	var holes []int
	for i, r := range rings {
		if i > 0 {
			holes = append(holes, starts[i])
		}
		for _, p := range r {
			coords = append(coords, p.X, p.Y)
		}
	}

	indices, err := earcut.Earcut(coords, holes, 2)
	if err != nil {
		return nil, fmt.Errorf("triangulating %d rings: %w", len(rings), err)
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("triangulation returned %d indices, not a multiple of 3", len(indices))
	}

	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		if a < 0 || b < 0 || c < 0 || a >= total || b >= total || c >= total {
			continue
		}
		ax, ay := coords[2*a], coords[2*a+1]
		bx, by := coords[2*b], coords[2*b+1]
		cx, cy := coords[2*c], coords[2*c+1]
		if (bx-ax)*(cy-ay)-(by-ay)*(cx-ax) < 0 {
			indices[t+1], indices[t+2] = c, b
		}
	}
	return indices, nil
}
