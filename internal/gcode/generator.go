// Package gcode produces cutting programs for busbar plates and parses them
// back for verification.
package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/cellholder/internal/busbar"
	"github.com/piwi3910/cellholder/internal/model"
)

// miterLimit caps how far a sharp corner may be pushed out, in tool radii.
const miterLimit = 4.0

// Generator produces GCode that cuts busbar plates out of sheet stock.
type Generator struct {
	Settings model.PlateCutSettings
	profile  model.GCodeProfile
}

func New(settings model.PlateCutSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.GCodeProfile),
	}
}

// Profile returns the post-processor in use.
func (g *Generator) Profile() model.GCodeProfile { return g.profile }

// GeneratePlates produces one program cutting every plate of a face.
func (g *Generator) GeneratePlates(plates []busbar.Plate, title string) string {
	var b strings.Builder

	g.writeHeader(&b, plates, title)
	for i, p := range plates {
		g.writePlate(&b, p, i+1)
	}
	g.writeFooter(&b)

	return b.String()
}

// Passes returns the depth of each cutting pass. Laser profiles always cut
// in one pass at the surface.
func (g *Generator) Passes() []float64 {
	if g.profile.Laser {
		return []float64{0}
	}
	depth := g.Settings.CutDepth
	if depth <= 0 {
		return []float64{0}
	}
	step := g.Settings.PassDepth
	if step <= 0 || step > depth {
		step = depth
	}
	n := int(math.Ceil(depth/step - 1e-9))
	passes := make([]float64, n)
	for i := range passes {
		passes[i] = math.Min(float64(i+1)*step, depth)
	}
	return passes
}

func (g *Generator) writeHeader(b *strings.Builder, plates []busbar.Plate, title string) {
	p := g.profile

	b.WriteString(g.comment(fmt.Sprintf("cellholder GCode - %s", title)))
	b.WriteString(g.comment(fmt.Sprintf("Plates: %d", len(plates))))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.2fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate)))
	if p.Laser {
		b.WriteString(g.comment(fmt.Sprintf("Laser power: S%d, single pass", g.Settings.SpindleSpeed)))
	} else {
		b.WriteString(g.comment(fmt.Sprintf("Depth: %.2fmm in %d passes", g.Settings.CutDepth, len(g.Passes()))))
	}
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	// A laser is switched on per cut, a spindle once for the whole job.
	if !p.Laser {
		if p.SpindleStart != "" {
			b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
		}
		b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	}
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}

	if p.SpindleStop != "" && !containsLine(p.EndCode, p.SpindleStop) {
		b.WriteString(p.SpindleStop + "\n")
	}
}

// writePlate cuts one plate outline offset outwards by the tool radius so
// the finished plate keeps its drawn size.
func (g *Generator) writePlate(b *strings.Builder, plate busbar.Plate, n int) {
	lo, hi := plate.Outline.BoundingBox()
	b.WriteString(g.comment(fmt.Sprintf("--- Plate %d: %s %s (%.1f x %.1f) ---",
		n, plate.Label, plate.Layer(), hi.X-lo.X, hi.Y-lo.Y)))

	path := g.ToolPath(plate.Outline)
	if len(path) < 3 {
		b.WriteString(g.comment("WARNING: outline has fewer than 3 points, skipping"))
		return
	}

	p := g.profile
	passes := g.Passes()
	for i, depth := range passes {
		if !p.Laser {
			b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", i+1, len(passes), depth)))
		}

		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(path[0].X), g.format(path[0].Y)))
		if p.Laser {
			b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
		} else {
			b.WriteString(fmt.Sprintf("%s Z%s F%s\n", p.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))
		}

		for j := 1; j < len(path); j++ {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove,
				g.format(path[j].X), g.format(path[j].Y), g.format(g.Settings.FeedRate)))
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove,
			g.format(path[0].X), g.format(path[0].Y), g.format(g.Settings.FeedRate)))

		if p.Laser {
			b.WriteString(p.SpindleStop + "\n")
		} else {
			b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
		}
	}

	b.WriteString("\n")
}

// ToolPath offsets a closed outline outwards by the tool radius. Corners
// are mitred, with the miter length capped at miterLimit tool radii.
func (g *Generator) ToolPath(outline model.Ring) model.Ring {
	return offsetOutline(outline, g.Settings.ToolDiameter/2)
}

func offsetOutline(outline model.Ring, dist float64) model.Ring {
	n := len(outline)
	if n < 3 || dist == 0 {
		return outline
	}

	// outward is to the right of travel on a counter-clockwise ring
	side := 1.0
	if !outline.IsCCW() {
		side = -1.0
	}

	result := make(model.Ring, n)
	for i := 0; i < n; i++ {
		prev := outline[(i-1+n)%n]
		curr := outline[i]
		next := outline[(i+1)%n]

		n1x, n1y := normalize(side*(curr.Y-prev.Y), -side*(curr.X-prev.X))
		n2x, n2y := normalize(side*(next.Y-curr.Y), -side*(next.X-curr.X))

		nx, ny := normalize(n1x+n2x, n1y+n2y)
		scale := dist
		if cos := nx*n1x + ny*n1y; cos > 1e-9 {
			scale = math.Min(dist/cos, miterLimit*dist)
		}

		result[i] = model.Point2D{
			X: curr.X + nx*scale,
			Y: curr.Y + ny*scale,
		}
	}
	return result
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	return fmt.Sprintf(format, v)
}

func containsLine(lines []string, s string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) == s {
			return true
		}
	}
	return false
}

// normalize returns a unit vector in the given direction.
func normalize(x, y float64) (float64, float64) {
	length := math.Sqrt(x*x + y*y)
	if length < 1e-9 {
		return 0, 0
	}
	return x / length, y / length
}
