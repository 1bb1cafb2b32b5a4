package model

import (
	"math"
	"testing"
)

func TestCalculatePrintEstimateBasic(t *testing.T) {
	// 100 x 100 mm face, 10 mm tall = 100 cm³
	est := CalculatePrintEstimate(10000, 10, 1.24, 1.75, 20)

	if math.Abs(est.Volume-100000) > 1e-6 {
		t.Errorf("expected volume 100000, got %f", est.Volume)
	}
	if math.Abs(est.Mass-124) > 1e-6 {
		t.Errorf("expected mass 124 g, got %f", est.Mass)
	}
	if math.Abs(est.EstimatedCost-2.48) > 1e-6 {
		t.Errorf("expected cost 2.48, got %f", est.EstimatedCost)
	}
	section := math.Pi * 1.75 * 1.75 / 4
	if math.Abs(est.FilamentLength-100000/section/1000) > 1e-6 {
		t.Errorf("unexpected filament length %f", est.FilamentLength)
	}
}

func TestCalculatePrintEstimateZeroVolume(t *testing.T) {
	est := CalculatePrintEstimate(5000, 0, 1.24, 1.75, 20)
	if est.Mass != 0 || est.EstimatedCost != 0 {
		t.Errorf("expected zero mass and cost, got %+v", est)
	}
	if est.FaceArea != 5000 {
		t.Errorf("face area should be preserved, got %f", est.FaceArea)
	}
}

func TestCalculatePrintEstimateNoFilamentDiameter(t *testing.T) {
	est := CalculatePrintEstimate(100, 1, 1.24, 0, 20)
	if est.FilamentLength != 0 {
		t.Errorf("expected zero length without diameter, got %f", est.FilamentLength)
	}
	if est.Mass <= 0 {
		t.Error("mass should still be computed")
	}
}

func TestEstimateForLayout(t *testing.T) {
	outer := Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	cfg := DefaultConfig()
	cfg.ExtrusionHeight = 2
	est := EstimateForLayout(Layout{Outer: outer}, cfg)
	if math.Abs(est.Volume-200) > 1e-9 {
		t.Errorf("expected volume 200, got %f", est.Volume)
	}
}
