package core

import (
	"errors"
	"testing"
)

func TestBeamStateCommitNumbersBeamsAcrossColors(t *testing.T) {
	scn := &Scenario{Satellites: []Satellite{{ID: 0, Position: Vec3{Z: 7000}}}}
	cfg := DefaultConfig()
	cfg.BeamsPerSatellite = 3
	st := NewBeamState(scn, cfg)

	for i, c := range []int{0, 2, 0} {
		beam, err := st.Commit(0, c, Vec3{X: float32(i), Z: 6371})
		if err != nil {
			t.Fatalf("Commit #%d: %v", i, err)
		}
		if beam != i+1 {
			t.Fatalf("Commit #%d returned beam %d, want %d", i, beam, i+1)
		}
	}
	if !st.Full(0) {
		t.Fatal("satellite should be full after 3 beams")
	}
	if got := len(st.At(0).Targets(0)); got != 2 {
		t.Fatalf("color A targets = %d, want 2", got)
	}
	if got := len(st.At(0).Targets(1)); got != 0 {
		t.Fatalf("color B targets = %d, want 0", got)
	}

	_, err := st.Commit(0, 1, Vec3{Z: 6371})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("Commit on full satellite: err = %v, want ErrInvariantViolation", err)
	}
	if got := st.At(0).Count(); got != 3 {
		t.Fatalf("Count after rejected commit = %d, want 3", got)
	}
}

func TestBeamStateCommitRejectsBadIndices(t *testing.T) {
	scn := &Scenario{Satellites: []Satellite{{ID: 0, Position: Vec3{Z: 7000}}}}
	cfg := DefaultConfig()
	cfg.ColorsPerSatellite = 2
	st := NewBeamState(scn, cfg)

	for _, tc := range []struct{ sat, color int }{{1, 0}, {-1, 0}, {0, 2}, {0, -1}} {
		if _, err := st.Commit(tc.sat, tc.color, Vec3{}); !errors.Is(err, ErrInvariantViolation) {
			t.Fatalf("Commit(%d, %d): err = %v, want ErrInvariantViolation", tc.sat, tc.color, err)
		}
	}
}

func TestSatelliteBeamsConflicts(t *testing.T) {
	user := Vec3{Z: EarthRadiusKm}
	sat := Vec3{Z: 7000}
	scn := &Scenario{Satellites: []Satellite{{ID: 0, Position: sat}}}
	st := NewBeamState(scn, DefaultConfig())
	if _, err := st.Commit(0, 0, user); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	near := tilt(sat, 629, 180-5)
	far := tilt(sat, 629, 180-15)
	b := st.At(0)
	if !b.conflicts(0, near, 10) {
		t.Fatal("target 5° away should conflict on the same color")
	}
	if b.conflicts(1, near, 10) {
		t.Fatal("target should not conflict on an unused color")
	}
	if b.conflicts(0, far, 10) {
		t.Fatal("target 15° away should not conflict")
	}
}
