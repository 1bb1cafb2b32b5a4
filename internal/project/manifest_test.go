package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/cellholder/internal/model"
)

func TestWriteAndReadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "manifest.json")

	cfg := model.DefaultConfig()
	m := NewManifest("", cfg, model.FitResult{Fits: true, Series: 10, Parallel: 4})
	m.Counts = Counts{Cells: 40, Rings: 41, Vertices: 2000, Triangles: 4000, TopPlates: 6, BottomPlates: 5}
	m.Files = append(m.Files, "cellholder.stl", "busbars-top.dxf")
	m.Warnings = []string{"kerf"}

	if err := WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	loaded, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}

	if loaded.Version != ManifestVersion {
		t.Errorf("expected version %s, got %s", ManifestVersion, loaded.Version)
	}
	if _, err := uuid.Parse(loaded.RunID); err != nil {
		t.Errorf("expected a UUID run id, got %q", loaded.RunID)
	}
	if _, err := time.Parse(time.RFC3339, loaded.CreatedAt); err != nil {
		t.Errorf("expected RFC3339 timestamp, got %q", loaded.CreatedAt)
	}
	if loaded.Counts != m.Counts {
		t.Errorf("expected counts %+v, got %+v", m.Counts, loaded.Counts)
	}
	if len(loaded.Files) != 2 || loaded.Files[1] != "busbars-top.dxf" {
		t.Errorf("unexpected files %v", loaded.Files)
	}
	if !loaded.Fit.Fits || loaded.Config.Series != 10 {
		t.Errorf("fit or config lost: %+v", loaded.Fit)
	}
}

func TestNewManifest_KeepsGivenRunID(t *testing.T) {
	m := NewManifest("fixed-id", model.DefaultConfig(), model.FitResult{})
	if m.RunID != "fixed-id" {
		t.Errorf("expected run id fixed-id, got %s", m.RunID)
	}
	if m.Files == nil {
		t.Error("Files should start as an empty list")
	}
}

func TestNewRunIDUnique(t *testing.T) {
	if NewRunID() == NewRunID() {
		t.Error("expected distinct run ids")
	}
}

func TestReadManifestMissingFile(t *testing.T) {
	if _, err := ReadManifest(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadManifestInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadManifest(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestReadManifestMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noversion.json")
	if err := os.WriteFile(path, []byte(`{"run_id":"x"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadManifest(path); err == nil {
		t.Fatal("expected error for missing version")
	}
}
