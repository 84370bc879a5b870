// Package config builds the planner's core.Config from an optional YAML file
// and PLANNER_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/signalsfoundry/beam-planner/core"
	"gopkg.in/yaml.v3"
)

// File is the YAML shape of a planner config. Unset fields keep their
// defaults; pointer fields let an explicit zero through.
type File struct {
	BeamsPerSatellite                int      `yaml:"beams_per_satellite"`
	ColorsPerSatellite               int      `yaml:"colors_per_satellite"`
	MaxUserVisibleAngleDeg           *float32 `yaml:"max_user_visible_angle_deg"`
	InterfererMinSeparationDeg       *float32 `yaml:"interferer_min_separation_deg"`
	SelfInterferenceMinSeparationDeg *float32 `yaml:"self_interference_min_separation_deg"`
	Workers                          int      `yaml:"workers"`
}

// Load returns the default config, overlaid with the YAML file at path (if
// path is non-empty) and then with environment overrides. The result is
// validated.
func Load(path string) (core.Config, error) {
	cfg := core.DefaultConfig()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return core.Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if cfg, err = Decode(f, cfg); err != nil {
			return core.Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg, err := applyEnv(cfg)
	if err != nil {
		return core.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

// Decode overlays the YAML document in r onto base. Unknown keys are
// rejected. An empty document leaves base unchanged.
func Decode(r io.Reader, base core.Config) (core.Config, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return core.Config{}, fmt.Errorf("decode: %w", err)
	}
	return f.apply(base), nil
}

func (f File) apply(cfg core.Config) core.Config {
	if f.BeamsPerSatellite != 0 {
		cfg.BeamsPerSatellite = f.BeamsPerSatellite
	}
	if f.ColorsPerSatellite != 0 {
		cfg.ColorsPerSatellite = f.ColorsPerSatellite
	}
	if f.MaxUserVisibleAngleDeg != nil {
		cfg.MaxUserVisibleAngleDeg = *f.MaxUserVisibleAngleDeg
	}
	if f.InterfererMinSeparationDeg != nil {
		cfg.InterfererMinSeparationDeg = *f.InterfererMinSeparationDeg
	}
	if f.SelfInterferenceMinSeparationDeg != nil {
		cfg.SelfInterferenceMinSeparationDeg = *f.SelfInterferenceMinSeparationDeg
	}
	if f.Workers != 0 {
		cfg.Workers = f.Workers
	}
	return cfg
}

func applyEnv(cfg core.Config) (core.Config, error) {
	ints := []struct {
		key string
		dst *int
	}{
		{"PLANNER_BEAMS_PER_SATELLITE", &cfg.BeamsPerSatellite},
		{"PLANNER_COLORS_PER_SATELLITE", &cfg.ColorsPerSatellite},
		{"PLANNER_WORKERS", &cfg.Workers},
	}
	for _, e := range ints {
		raw, ok := os.LookupEnv(e.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return core.Config{}, fmt.Errorf("%w: %s=%q", core.ErrInvalidConfig, e.key, raw)
		}
		*e.dst = v
	}

	floats := []struct {
		key string
		dst *float32
	}{
		{"PLANNER_MAX_USER_VISIBLE_ANGLE_DEG", &cfg.MaxUserVisibleAngleDeg},
		{"PLANNER_INTERFERER_MIN_SEPARATION_DEG", &cfg.InterfererMinSeparationDeg},
		{"PLANNER_SELF_INTERFERENCE_MIN_SEPARATION_DEG", &cfg.SelfInterferenceMinSeparationDeg},
	}
	for _, e := range floats {
		raw, ok := os.LookupEnv(e.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return core.Config{}, fmt.Errorf("%w: %s=%q", core.ErrInvalidConfig, e.key, raw)
		}
		*e.dst = float32(v)
	}
	return cfg, nil
}
