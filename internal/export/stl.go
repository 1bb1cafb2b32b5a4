// Package export writes generated holders and busbar drawings to mesh,
// drawing, document and spreadsheet formats.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"

	"github.com/piwi3910/cellholder/internal/model"
)

// WriteSTL writes the mesh as an ASCII STL solid. Each facet carries the
// normal computed from its winding. Faces referencing a missing vertex are
// skipped.
func WriteSTL(w io.Writer, m model.Mesh, name string) error {
	if name == "" {
		name = "cellholder"
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for i, f := range m.Faces {
		if !m.ValidFace(f) {
			continue
		}
		n := m.FaceNormal(i)
		fmt.Fprintf(bw, "  facet normal %e %e %e\n", n.X, n.Y, n.Z)
		bw.WriteString("    outer loop\n")
		for _, idx := range f {
			v := m.Vertices[idx]
			fmt.Fprintf(bw, "      vertex %e %e %e\n", v.X, v.Y, v.Z)
		}
		bw.WriteString("    endloop\n")
		bw.WriteString("  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

// SaveSTL writes an ASCII STL file.
func SaveSTL(path string, m model.Mesh, name string) error {
	if len(m.Faces) == 0 {
		return fmt.Errorf("no faces to export")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteSTL(f, m, name); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// SaveBinarySTL writes a binary STL file through the sdfx renderer.
func SaveBinarySTL(path string, m model.Mesh) error {
	tris := Triangles(m)
	if len(tris) == 0 {
		return fmt.Errorf("no faces to export")
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Triangles converts the valid faces of a mesh to a triangle soup.
func Triangles(m model.Mesh) []*sdf.Triangle3 {
	tris := make([]*sdf.Triangle3, 0, len(m.Faces))
	for _, f := range m.Faces {
		if !m.ValidFace(f) {
			continue
		}
		tris = append(tris, &sdf.Triangle3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]})
	}
	return tris
}
