package core

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadScenario(t *testing.T) {
	input := `
# three kinds, mixed order
sat 2 0 0 7000
user 17 0 0 6371

user 9 10.5 -3 6370.25
interferer 1 0 0 42164
  sat 1 100 0 7000
`
	scn, err := LoadScenario(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	want := &Scenario{
		Users: []User{
			{ID: 0, Position: Vec3{Z: 6371}},
			{ID: 1, Position: Vec3{X: 10.5, Y: -3, Z: 6370.25}},
		},
		Satellites: []Satellite{
			{ID: 1, Position: Vec3{Z: 7000}},
			{ID: 0, Position: Vec3{X: 100, Z: 7000}},
		},
		Interferers: []Vec3{{Z: 42164}},
	}
	if diff := cmp.Diff(want, scn); diff != "" {
		t.Fatalf("scenario mismatch (-want +got):\n%s", diff)
	}
	if idx, ok := scn.SatelliteIndex(0); !ok || idx != 1 {
		t.Fatalf("SatelliteIndex(0) = %d, %v; want 1, true", idx, ok)
	}
}

func TestLoadScenarioRejectsMalformedLines(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		unknown bool
	}{
		{name: "too few fields", input: "user 1 0 0\n", line: 1},
		{name: "too many fields", input: "sat 1 0 0 7000 9\n", line: 1},
		{name: "bad coordinate", input: "user 1 0 0 6371\nuser 2 0 x 6371\n", line: 2},
		{name: "nan coordinate", input: "sat 1 0 0 7000\nuser 1 nan nan nan\nuser 2 0 0 6371\n", line: 2},
		{name: "infinite coordinate", input: "sat 1 0 0 +Inf\n", line: 1},
		{name: "overflowing coordinate", input: "user 1 0 0 1e39\n", line: 1},
		{name: "unknown kind", input: "# c\nstation 1 0 0 6371\n", line: 2, unknown: true},
		{name: "zero satellite id", input: "sat 0 0 0 7000\n", line: 1},
		{name: "non-numeric satellite id", input: "sat a 0 0 7000\n", line: 1},
		{name: "duplicate satellite id", input: "sat 1 0 0 7000\nsat 1 1 0 7000\n", line: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scn, err := LoadScenario(strings.NewReader(tt.input))
			if scn != nil {
				t.Fatalf("expected no scenario, got %+v", scn)
			}
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("error = %v, want ErrMalformedInput", err)
			}
			if got := errors.Is(err, ErrUnknownKind); got != tt.unknown {
				t.Fatalf("errors.Is(err, ErrUnknownKind) = %v, want %v", got, tt.unknown)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if pe.Line != tt.line {
				t.Fatalf("ParseError.Line = %d, want %d", pe.Line, tt.line)
			}
			if !strings.Contains(err.Error(), strings.TrimSpace(pe.Content)) {
				t.Fatalf("error %q does not quote the offending line", err)
			}
		})
	}
}

func TestLoadScenarioFileMissing(t *testing.T) {
	_, err := LoadScenarioFile(filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want os.ErrNotExist", err)
	}
}

func TestWriteScenarioReloads(t *testing.T) {
	scn := &Scenario{
		Users:       []User{{ID: 0, Position: Vec3{X: 1.25, Z: 6371}}, {ID: 1, Position: Vec3{Y: -2, Z: 6371}}},
		Satellites:  []Satellite{{ID: 4, Position: Vec3{Z: 6921.5}}},
		Interferers: []Vec3{{X: 42164}},
	}
	var buf bytes.Buffer
	if err := WriteScenario(&buf, scn); err != nil {
		t.Fatalf("WriteScenario: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "sat 5 0 0 6921.5\n") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}

	got, err := LoadScenario(&buf)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if diff := cmp.Diff(scn, got); diff != "" {
		t.Fatalf("reloaded scenario mismatch (-want +got):\n%s", diff)
	}
}
