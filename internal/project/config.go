package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/cellholder/internal/model"
)

// SaveConfig writes a holder configuration as JSON.
func SaveConfig(path string, cfg model.HolderConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}
	return writeJSON(path, cfg)
}

// LoadConfig reads a holder configuration. Fields absent from the file keep
// their DefaultConfig values, and a missing file yields the defaults.
func LoadConfig(path string) (model.HolderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultConfig(), nil
		}
		return model.HolderConfig{}, err
	}

	cfg := model.DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.HolderConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return model.HolderConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
