package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/cellholder/internal/model"
)

// ManifestVersion is written into every manifest.
const ManifestVersion = "1.0.0"

// Counts summarises the size of a generated holder.
type Counts struct {
	Cells        int `json:"cells"`
	Rings        int `json:"rings"`
	Vertices     int `json:"vertices"`
	Triangles    int `json:"triangles"`
	TopPlates    int `json:"top_plates"`
	BottomPlates int `json:"bottom_plates"`
}

// ProgramStats summarises a plate cutting program as read back from disk.
type ProgramStats struct {
	File        string  `json:"file"`
	Loops       int     `json:"loops"`
	CutLength   float64 `json:"cut_length_mm"`
	RapidLength float64 `json:"rapid_length_mm"`
	Plunges     int     `json:"plunges"`
}

// Manifest records what one generation run produced.
type Manifest struct {
	Version   string              `json:"version"`
	RunID     string              `json:"run_id"`
	CreatedAt string              `json:"created_at"`
	Config    model.HolderConfig  `json:"config"`
	Fit       model.FitResult     `json:"fit"`
	Counts    Counts              `json:"counts"`
	Estimate  model.PrintEstimate `json:"estimate"`
	Files     []string            `json:"files"`
	Programs  []ProgramStats      `json:"programs,omitempty"`
	Warnings  []string            `json:"warnings,omitempty"`
}

// NewRunID returns a fresh identifier for a generation run.
func NewRunID() string {
	return uuid.New().String()
}

// NewManifest starts a manifest stamped with the current time.
func NewManifest(runID string, cfg model.HolderConfig, fit model.FitResult) Manifest {
	if runID == "" {
		runID = NewRunID()
	}
	return Manifest{
		Version:   ManifestVersion,
		RunID:     runID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    cfg,
		Fit:       fit,
		Files:     []string{},
	}
}

// WriteManifest writes the manifest as JSON.
func WriteManifest(path string, m Manifest) error {
	return writeJSON(path, m)
}

// ReadManifest reads a manifest back and checks it carries a version.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Version == "" {
		return Manifest{}, fmt.Errorf("invalid manifest: missing version field")
	}
	if m.Files == nil {
		m.Files = []string{}
	}
	return m, nil
}
