package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/piwi3910/cellholder/internal/model"
)

// flagKeys maps geometry flags to HolderConfig keys.
var flagKeys = map[string]string{
	"name":             "name",
	"width":            "width",
	"height":           "height",
	"extrusion-height": "extrusion_height",
	"cell-diameter":    "cell_diameter",
	"spacing":          "spacing",
	"wall":             "wall_thickness",
	"series":           "series",
	"parallel":         "parallel",
	"honeycomb":        "honeycomb",
	"rounded":          "rounded_corners",
	"corner-radius":    "corner_radius",
	"chord-tolerance":  "chord_tolerance",
	"busbar-gap":       "busbar.gap",
	"weld-diameter":    "busbar.weld_diameter",
	"tool-diameter":    "plate_cut.tool_diameter",
	"gcode-profile":    "plate_cut.gcode_profile",
}

func addGeometryFlags(fs *pflag.FlagSet) {
	d := model.DefaultConfig()
	fs.String("name", d.Name, "holder name, used as the output file stem")
	fs.Float64("width", d.Width, "enclosure width in mm")
	fs.Float64("height", d.Height, "enclosure height in mm")
	fs.Float64("extrusion-height", d.ExtrusionHeight, "holder thickness in mm")
	fs.Float64("cell-diameter", d.CellDiameter, "cell diameter in mm")
	fs.Float64("spacing", d.Spacing, "gap between neighbouring cells in mm")
	fs.Float64("wall", d.WallThickness, "wall between the outermost cells and the enclosure edge in mm")
	fs.IntP("series", "s", d.Series, "cell columns")
	fs.IntP("parallel", "p", d.Parallel, "cell rows")
	fs.Bool("honeycomb", d.Honeycomb, "offset alternate rows (hexagonal packing)")
	fs.Bool("rounded", d.RoundedCorners, "round the outer corners")
	fs.Float64("corner-radius", d.CornerRadius, "outer corner radius in mm")
	fs.Float64("chord-tolerance", d.ChordTolerance, "maximum arc deviation in mm, 0 for the finest tessellation")
	fs.Float64("busbar-gap", d.Busbar.Gap, "gap between neighbouring busbar plates in mm")
	fs.Float64("weld-diameter", d.Busbar.WeldDiameter, "weld marker diameter in mm, 0 for none")
	fs.Float64("tool-diameter", d.PlateCut.ToolDiameter, "plate cutting tool diameter in mm")
	fs.String("gcode-profile", d.PlateCut.GCodeProfile, "G-code profile for plate cutting")
}

// newViper wires flags, CELLHOLDER_* environment variables and an optional
// config file over base. Precedence is flag, env, file, base.
func newViper(fs *pflag.FlagSet, base model.HolderConfig, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CELLHOLDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults, err := flatten(base)
	if err != nil {
		return nil, err
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for flagName, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", flagName, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// resolveConfig unmarshals the merged settings into a validated HolderConfig.
func resolveConfig(v *viper.Viper) (model.HolderConfig, error) {
	var cfg model.HolderConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// flatten turns cfg into dotted viper keys using its JSON field names.
func flatten(cfg model.HolderConfig) (map[string]interface{}, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var nested map[string]interface{}
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, err
	}
	out := make(map[string]interface{})
	var walk func(prefix string, m map[string]interface{})
	walk = func(prefix string, m map[string]interface{}) {
		for k, val := range m {
			if sub, ok := val.(map[string]interface{}); ok {
				walk(prefix+k+".", sub)
				continue
			}
			out[prefix+k] = val
		}
	}
	walk("", nested)
	return out, nil
}
