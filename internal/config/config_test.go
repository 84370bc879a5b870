package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signalsfoundry/beam-planner/core"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(core.DefaultConfig(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	doc := `
beams_per_satellite: 16
colors_per_satellite: 2
self_interference_min_separation_deg: 0
workers: 3
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := core.DefaultConfig()
	want.BeamsPerSatellite = 16
	want.ColorsPerSatellite = 2
	want.SelfInterferenceMinSeparationDeg = 0
	want.Workers = 3
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	if err := os.WriteFile(path, []byte("beams_per_satellite: 16\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PLANNER_BEAMS_PER_SATELLITE", "8")
	t.Setenv("PLANNER_INTERFERER_MIN_SEPARATION_DEG", "25.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BeamsPerSatellite != 8 {
		t.Fatalf("BeamsPerSatellite = %d, want 8", cfg.BeamsPerSatellite)
	}
	if cfg.InterfererMinSeparationDeg != 25.5 {
		t.Fatalf("InterfererMinSeparationDeg = %v, want 25.5", cfg.InterfererMinSeparationDeg)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		env  map[string]string
	}{
		{name: "unknown key", doc: "beams: 3\n"},
		{name: "too many colors", doc: "colors_per_satellite: 5\n"},
		{name: "bad env number", env: map[string]string{"PLANNER_WORKERS": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.doc != "" {
				path = filepath.Join(t.TempDir(), "planner.yaml")
				if err := os.WriteFile(path, []byte(tt.doc), 0o644); err != nil {
					t.Fatalf("write config: %v", err)
				}
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDecodeEmptyDocumentKeepsBase(t *testing.T) {
	base := core.DefaultConfig()
	base.Workers = 5
	got, err := Decode(strings.NewReader(""), base)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(base, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load error = %v, want os.ErrNotExist", err)
	}
}
