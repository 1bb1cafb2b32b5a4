package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/cellholder/internal/model"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed in the XY plane
	MovePlunge                  // G1 with Z decreasing
	MoveRetract                 // G0/G1 with Z increasing
)

// Move represents a single parsed movement.
type Move struct {
	Type     MoveType
	From     [3]float64
	To       [3]float64
	FeedRate float64
	// Powered is true while a laser or spindle is switched on.
	Powered bool
}

// Length returns the XY distance covered by the move.
func (m Move) Length() float64 {
	return math.Hypot(m.To[0]-m.From[0], m.To[1]-m.From[1])
}

var coordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// ParseGCode parses a program into moves, tracking absolute position and
// spindle/laser state. Comments in ';' or '( )' form are ignored.
func ParseGCode(code string) []Move {
	var moves []Move

	var pos [3]float64
	feed := 0.0
	powered := false

	for _, line := range strings.Split(code, "\n") {
		line = stripComment(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		word := strings.Fields(upper)[0]

		switch word {
		case "M3", "M03", "M4", "M04":
			powered = true
			continue
		case "M5", "M05":
			powered = false
			continue
		case "G0", "G00", "G1", "G01":
		default:
			continue
		}
		isRapid := word == "G0" || word == "G00"

		next, nextFeed := pos, feed
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				next[0] = val
			case "Y":
				next[1] = val
			case "Z":
				next[2] = val
			case "F":
				nextFeed = val
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(isRapid, pos, next),
			From:     pos,
			To:       next,
			FeedRate: nextFeed,
			Powered:  powered,
		})
		pos, feed = next, nextFeed
	}

	return moves
}

func stripComment(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	for {
		start := strings.Index(line, "(")
		if start < 0 {
			break
		}
		end := strings.Index(line[start:], ")")
		if end < 0 {
			line = line[:start]
			break
		}
		line = line[:start] + line[start+end+1:]
	}
	return strings.TrimSpace(line)
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(isRapid bool, from, to [3]float64) MoveType {
	zDelta := to[2] - from[2]
	hasXY := from[0] != to[0] || from[1] != to[1]

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// Stats summarises a parsed program.
type Stats struct {
	CutLength   float64
	RapidLength float64
	Plunges     int
	MinZ        float64
}

// Summarize totals cut and rapid distances.
func Summarize(moves []Move) Stats {
	var s Stats
	for _, m := range moves {
		switch m.Type {
		case MoveFeed:
			s.CutLength += m.Length()
		case MoveRapid:
			s.RapidLength += m.Length()
		case MovePlunge:
			s.Plunges++
		}
		s.MinZ = math.Min(s.MinZ, m.To[2])
	}
	return s
}

// CutLoops returns the closed paths traced by consecutive feed moves, one
// per pass. A loop ends when the tool leaves the cut with a rapid or a
// retract, or when the laser switches off.
func CutLoops(moves []Move) []model.Ring {
	var loops []model.Ring
	var cur model.Ring
	flush := func() {
		if len(cur) >= 3 && model.Dist(cur[0], cur[len(cur)-1]) < 1e-6 {
			loops = append(loops, cur[:len(cur)-1])
		}
		cur = nil
	}
	for _, m := range moves {
		if m.Type != MoveFeed || !m.Powered {
			flush()
			continue
		}
		if len(cur) == 0 {
			cur = append(cur, model.Point2D{X: m.From[0], Y: m.From[1]})
		}
		cur = append(cur, model.Point2D{X: m.To[0], Y: m.To[1]})
	}
	flush()
	return loops
}
