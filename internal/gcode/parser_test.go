package gcode

import (
	"math"
	"testing"
)

func TestParseGCode_Empty(t *testing.T) {
	moves := ParseGCode("")
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for empty input, got %d", len(moves))
	}
}

func TestParseGCode_CommentsOnly(t *testing.T) {
	code := `; This is a comment
; Another comment
(parenthetical comment)
`
	moves := ParseGCode(code)
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for comments-only input, got %d", len(moves))
	}
}

func TestParseGCode_RapidMove(t *testing.T) {
	moves := ParseGCode("G0 X10.000 Y20.000\n")
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	m := moves[0]
	if m.Type != MoveRapid {
		t.Errorf("expected MoveRapid, got %d", m.Type)
	}
	if m.From != [3]float64{} {
		t.Errorf("expected from origin, got %v", m.From)
	}
	if m.To[0] != 10 || m.To[1] != 20 {
		t.Errorf("expected to (10,20), got (%.3f, %.3f)", m.To[0], m.To[1])
	}
}

func TestParseGCode_FeedMove(t *testing.T) {
	moves := ParseGCode("G0 X0.000 Y0.000\nG1 X100.000 Y0.000 F1500.0\n")
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	m := moves[1]
	if m.Type != MoveFeed {
		t.Errorf("expected MoveFeed, got %d", m.Type)
	}
	if m.FeedRate != 1500 {
		t.Errorf("expected feed rate 1500, got %.1f", m.FeedRate)
	}
	if m.Length() != 100 {
		t.Errorf("expected length 100, got %.3f", m.Length())
	}
}

func TestParseGCode_PlungeAndRetract(t *testing.T) {
	moves := ParseGCode("G0 Z3\nG0 X5 Y5\nG1 Z-0.1 F100\nG0 Z3\n")
	want := []MoveType{MoveRetract, MoveRapid, MovePlunge, MoveRetract}
	if len(moves) != len(want) {
		t.Fatalf("expected %d moves, got %d", len(want), len(moves))
	}
	for i, w := range want {
		if moves[i].Type != w {
			t.Errorf("move %d: expected type %d, got %d", i, w, moves[i].Type)
		}
	}
}

func TestParseGCode_InlineCommentsAndState(t *testing.T) {
	code := "G1 X1 Y1 F200 (first)\nG1 X2 ; second\nG01 Y4\n"
	moves := ParseGCode(code)
	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(moves))
	}
	last := moves[2]
	if last.To[0] != 2 || last.To[1] != 4 {
		t.Errorf("expected (2,4), got (%.1f, %.1f)", last.To[0], last.To[1])
	}
	if last.FeedRate != 200 {
		t.Errorf("feed rate should carry over, got %.1f", last.FeedRate)
	}
}

func TestParseGCode_PowerState(t *testing.T) {
	code := "G1 X1\nM4 S1000\nG1 X2\nM5\nG1 X3\n"
	moves := ParseGCode(code)
	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(moves))
	}
	if moves[0].Powered || !moves[1].Powered || moves[2].Powered {
		t.Errorf("unexpected power states: %v %v %v", moves[0].Powered, moves[1].Powered, moves[2].Powered)
	}
}

func TestSummarize(t *testing.T) {
	code := "M3 S1000\nG0 X3 Y4\nG1 Z-0.5 F100\nG1 X13 Y4 F300\nG0 Z2\n"
	s := Summarize(ParseGCode(code))
	if s.RapidLength != 5 {
		t.Errorf("expected rapid length 5, got %.3f", s.RapidLength)
	}
	if s.CutLength != 10 {
		t.Errorf("expected cut length 10, got %.3f", s.CutLength)
	}
	if s.Plunges != 1 {
		t.Errorf("expected 1 plunge, got %d", s.Plunges)
	}
	if s.MinZ != -0.5 {
		t.Errorf("expected min Z -0.5, got %.3f", s.MinZ)
	}
}

func TestCutLoops(t *testing.T) {
	code := `M3 S1000
G0 X0 Y0
G1 Z-1 F100
G1 X10 Y0 F300
G1 X10 Y10
G1 X0 Y10
G1 X0 Y0
G0 Z3
G0 X20 Y0
G1 Z-1
G1 X30 Y0
G0 Z3
`
	loops := CutLoops(ParseGCode(code))
	if len(loops) != 1 {
		t.Fatalf("expected 1 closed loop, got %d", len(loops))
	}
	if len(loops[0]) != 4 {
		t.Fatalf("expected 4 loop points, got %d", len(loops[0]))
	}
	if math.Abs(loops[0].SignedArea()-100) > 1e-9 {
		t.Errorf("expected loop area 100, got %.3f", loops[0].SignedArea())
	}
}
