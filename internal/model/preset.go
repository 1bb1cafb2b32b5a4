package model

import (
	"time"

	"github.com/google/uuid"
)

// CellPreset captures a reusable holder configuration, typically one per
// cell format (18650, 21700, ...).
type CellPreset struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	Config      HolderConfig `json:"config"`
}

// NewCellPreset creates a preset from the given configuration.
func NewCellPreset(name, description string, cfg HolderConfig) CellPreset {
	now := time.Now().UTC().Format(time.RFC3339)
	return CellPreset{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Config:      cfg,
	}
}

// ToConfig returns a copy of the preset configuration renamed for a new run.
func (p CellPreset) ToConfig(name string) HolderConfig {
	cfg := p.Config
	if name != "" {
		cfg.Name = name
	}
	return cfg
}

// PresetStore holds a collection of cell presets.
type PresetStore struct {
	Presets []CellPreset `json:"presets"`
}

// NewPresetStore creates an empty preset store.
func NewPresetStore() PresetStore {
	return PresetStore{
		Presets: []CellPreset{},
	}
}

// DefaultPresetStore returns a store seeded with the common cylindrical
// cell formats.
func DefaultPresetStore() PresetStore {
	store := NewPresetStore()
	for _, c := range []struct {
		name     string
		desc     string
		diameter float64
		height   float64
	}{
		{"18650", "18 mm cell, 65 mm long", 18.4, 8},
		{"21700", "21 mm cell, 70 mm long", 21.4, 10},
		{"26650", "26 mm cell, 65 mm long", 26.5, 10},
		{"32700", "32 mm LiFePO4 cell, 70 mm long", 32.4, 12},
	} {
		cfg := DefaultConfig()
		cfg.Name = c.name
		cfg.CellDiameter = c.diameter
		cfg.ExtrusionHeight = c.height
		store.Add(NewCellPreset(c.name, c.desc, cfg))
	}
	return store
}

// Add adds a preset to the store.
func (ps *PresetStore) Add(p CellPreset) {
	ps.Presets = append(ps.Presets, p)
}

// Remove removes a preset by ID. Returns true if found and removed.
func (ps *PresetStore) Remove(id string) bool {
	for i, p := range ps.Presets {
		if p.ID == id {
			ps.Presets = append(ps.Presets[:i], ps.Presets[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the preset with the given ID, or nil.
func (ps *PresetStore) FindByID(id string) *CellPreset {
	for i := range ps.Presets {
		if ps.Presets[i].ID == id {
			return &ps.Presets[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first preset with the given name, or nil.
func (ps *PresetStore) FindByName(name string) *CellPreset {
	for i := range ps.Presets {
		if ps.Presets[i].Name == name {
			return &ps.Presets[i]
		}
	}
	return nil
}

func (ps *PresetStore) Names() []string {
	names := make([]string, len(ps.Presets))
	for i, p := range ps.Presets {
		names[i] = p.Name
	}
	return names
}
