package model

import "testing"

func TestDefaultAppConfigMatchesDefaultConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultConfig()

	if cfg.DefaultChordTolerance != defaults.ChordTolerance {
		t.Errorf("ChordTolerance mismatch: app=%f config=%f", cfg.DefaultChordTolerance, defaults.ChordTolerance)
	}
	if cfg.DefaultToolDiameter != defaults.PlateCut.ToolDiameter {
		t.Errorf("ToolDiameter mismatch: app=%f config=%f", cfg.DefaultToolDiameter, defaults.PlateCut.ToolDiameter)
	}
	if cfg.DefaultGCodeProfile != defaults.PlateCut.GCodeProfile {
		t.Errorf("GCodeProfile mismatch: app=%s config=%s", cfg.DefaultGCodeProfile, defaults.PlateCut.GCodeProfile)
	}
	if cfg.RecentConfigs == nil {
		t.Error("RecentConfigs should not be nil")
	}
}

func TestApplyToConfig(t *testing.T) {
	app := DefaultAppConfig()
	app.DefaultFeedRate = 900
	app.DefaultGCodeProfile = "GrblLaser"
	app.DefaultChordTolerance = 0.05

	cfg := DefaultConfig()
	app.ApplyToConfig(&cfg)

	if cfg.PlateCut.FeedRate != 900 {
		t.Errorf("expected FeedRate=900, got %f", cfg.PlateCut.FeedRate)
	}
	if cfg.PlateCut.GCodeProfile != "GrblLaser" {
		t.Errorf("expected GCodeProfile=GrblLaser, got %s", cfg.PlateCut.GCodeProfile)
	}
	if cfg.ChordTolerance != 0.05 {
		t.Errorf("expected ChordTolerance=0.05, got %f", cfg.ChordTolerance)
	}
}

func TestAddRecent(t *testing.T) {
	app := DefaultAppConfig()
	app.AddRecent("a.json")
	app.AddRecent("b.json")
	app.AddRecent("a.json")

	if len(app.RecentConfigs) != 2 {
		t.Fatalf("expected 2 recent entries, got %v", app.RecentConfigs)
	}
	if app.RecentConfigs[0] != "a.json" {
		t.Errorf("expected most recent first, got %v", app.RecentConfigs)
	}

	for i := 0; i < 20; i++ {
		app.AddRecent(string(rune('c'+i)) + ".json")
	}
	if len(app.RecentConfigs) != maxRecentConfigs {
		t.Errorf("expected list trimmed to %d, got %d", maxRecentConfigs, len(app.RecentConfigs))
	}
}
