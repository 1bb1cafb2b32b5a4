package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new configurations
	DefaultPreset         string  `json:"default_preset"`
	DefaultChordTolerance float64 `json:"default_chord_tolerance"`
	DefaultToolDiameter   float64 `json:"default_tool_diameter"`
	DefaultFeedRate       float64 `json:"default_feed_rate"`
	DefaultPlungeRate     float64 `json:"default_plunge_rate"`
	DefaultSpindleSpeed   int     `json:"default_spindle_speed"`
	DefaultSafeZ          float64 `json:"default_safe_z"`
	DefaultCutDepth       float64 `json:"default_cut_depth"`
	DefaultPassDepth      float64 `json:"default_pass_depth"`
	DefaultGCodeProfile   string  `json:"default_gcode_profile"`

	// Application preferences
	OutputDir     string   `json:"output_dir"`
	BinarySTL     bool     `json:"binary_stl"`
	RecentConfigs []string `json:"recent_configs"`
}

// maxRecentConfigs bounds the recent list.
const maxRecentConfigs = 10

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultConfig().
func DefaultAppConfig() AppConfig {
	defaults := DefaultConfig()
	return AppConfig{
		DefaultPreset:         "21700",
		DefaultChordTolerance: defaults.ChordTolerance,
		DefaultToolDiameter:   defaults.PlateCut.ToolDiameter,
		DefaultFeedRate:       defaults.PlateCut.FeedRate,
		DefaultPlungeRate:     defaults.PlateCut.PlungeRate,
		DefaultSpindleSpeed:   defaults.PlateCut.SpindleSpeed,
		DefaultSafeZ:          defaults.PlateCut.SafeZ,
		DefaultCutDepth:       defaults.PlateCut.CutDepth,
		DefaultPassDepth:      defaults.PlateCut.PassDepth,
		DefaultGCodeProfile:   defaults.PlateCut.GCodeProfile,
		OutputDir:             "out",
		RecentConfigs:         []string{},
	}
}

// ApplyToConfig copies the default values from AppConfig into a HolderConfig.
func (c AppConfig) ApplyToConfig(cfg *HolderConfig) {
	cfg.ChordTolerance = c.DefaultChordTolerance
	cfg.PlateCut.ToolDiameter = c.DefaultToolDiameter
	cfg.PlateCut.FeedRate = c.DefaultFeedRate
	cfg.PlateCut.PlungeRate = c.DefaultPlungeRate
	cfg.PlateCut.SpindleSpeed = c.DefaultSpindleSpeed
	cfg.PlateCut.SafeZ = c.DefaultSafeZ
	cfg.PlateCut.CutDepth = c.DefaultCutDepth
	cfg.PlateCut.PassDepth = c.DefaultPassDepth
	cfg.PlateCut.GCodeProfile = c.DefaultGCodeProfile
}

// AddRecent pushes path to the front of the recent list, removing
// duplicates and trimming the list.
func (c *AppConfig) AddRecent(path string) {
	recent := []string{path}
	for _, p := range c.RecentConfigs {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentConfigs {
		recent = recent[:maxRecentConfigs]
	}
	c.RecentConfigs = recent
}
