package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/cellholder/internal/model"
)

// DefaultPresetPath returns the default file path for the preset store.
// This is located at ~/.cellholder/presets.json.
func DefaultPresetPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.json")
}

// SavePresets writes the preset store to a JSON file.
func SavePresets(path string, store model.PresetStore) error {
	return writeJSON(path, store)
}

// LoadPresets reads a preset store from a JSON file.
// If the file does not exist, returns the store seeded with the common cell
// formats.
func LoadPresets(path string) (model.PresetStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultPresetStore(), nil
		}
		return model.PresetStore{}, err
	}
	var store model.PresetStore
	if err := json.Unmarshal(data, &store); err != nil {
		return model.PresetStore{}, fmt.Errorf("failed to parse presets: %w", err)
	}
	if store.Presets == nil {
		store.Presets = []model.CellPreset{}
	}
	return store, nil
}

// ResolvePreset looks a preset up by ID first, then by name.
func ResolvePreset(store model.PresetStore, key string) (model.CellPreset, error) {
	if p := store.FindByID(key); p != nil {
		return *p, nil
	}
	if p := store.FindByName(key); p != nil {
		return *p, nil
	}
	return model.CellPreset{}, fmt.Errorf("preset %q not found", key)
}
