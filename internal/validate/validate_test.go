package validate

import (
	"fmt"
	"math"
	"testing"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/model"
)

var (
	user = core.Vec3{Z: core.EarthRadiusKm}
	sat  = core.Vec3{Z: 7000}
)

// from returns the point dist away from p, deg degrees from +Z towards +X.
func from(p core.Vec3, dist, deg float64) core.Vec3 {
	rad := deg * math.Pi / 180
	return core.Vec3{X: p.X + float32(dist*math.Sin(rad)), Y: p.Y, Z: p.Z + float32(dist*math.Cos(rad))}
}

func check(r *Report, name string) CheckResult {
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	return CheckResult{}
}

func beam(sat, n, user int, c model.Color) model.Assignment {
	return model.Assignment{SatelliteID: sat, Beam: n, UserID: user, Color: c}
}

type countingRecorder map[string]int

func (c countingRecorder) RecordValidation(check string, passed bool) {
	if passed {
		c[check+"/pass"]++
	} else {
		c[check+"/fail"]++
	}
}

func TestValidateCleanPlan(t *testing.T) {
	scn := &core.Scenario{
		Users: []core.User{
			{ID: 0, Position: user},
			{ID: 1, Position: from(sat, 629, 180-5)},
			{ID: 2, Position: from(user, 10, 90)},
		},
		Satellites: []core.Satellite{{ID: 0, Position: sat}},
	}
	asg := []model.Assignment{
		{SatelliteID: 0, Beam: 1, UserID: 0, Color: 'A'},
		{SatelliteID: 0, Beam: 2, UserID: 1, Color: 'B'},
	}

	r, err := Validate(scn, asg, core.DefaultConfig())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !r.Passed() {
		t.Fatalf("report failed: %+v", r.Checks)
	}
	if len(r.Checks) != 5 {
		t.Fatalf("ran %d checks, want 5", len(r.Checks))
	}
	if r.Covered != 2 || math.Abs(r.Coverage()-2.0/3) > 1e-9 {
		t.Fatalf("coverage = %d (%v), want 2 (0.667)", r.Covered, r.Coverage())
	}

	rec := countingRecorder{}
	r.Record(rec)
	if rec["coverage/pass"] != 1 || len(rec) != 5 {
		t.Fatalf("recorded %v", rec)
	}
}

func TestValidateDetectsViolations(t *testing.T) {
	tests := []struct {
		name        string
		users       []core.Vec3
		sats        []core.Vec3
		interferers []core.Vec3
		asg         []model.Assignment
		failing     string
	}{
		{
			name:    "user covered twice",
			users:   []core.Vec3{user},
			sats:    []core.Vec3{sat, from(user, 1000, 10)},
			asg:     []model.Assignment{beam(0, 1, 0, 'A'), beam(1, 1, 0, 'A')},
			failing: CheckCoverage,
		},
		{
			name:    "satellite outside field of view",
			users:   []core.Vec3{user},
			sats:    []core.Vec3{from(user, 1000, 50)},
			asg:     []model.Assignment{beam(0, 1, 0, 'A')},
			failing: CheckVisibility,
		},
		{
			name:    "same color too close",
			users:   []core.Vec3{user, from(sat, 629, 180-5)},
			sats:    []core.Vec3{sat},
			asg:     []model.Assignment{beam(0, 1, 0, 'A'), beam(0, 2, 1, 'A')},
			failing: CheckSelfInterference,
		},
		{
			name:        "interferer too close",
			users:       []core.Vec3{user},
			sats:        []core.Vec3{sat},
			interferers: []core.Vec3{from(user, 30000, 15)},
			asg:         []model.Assignment{beam(0, 1, 0, 'A')},
			failing:     CheckInterferer,
		},
		{
			name:    "beam numbers skip",
			users:   []core.Vec3{user, from(sat, 629, 180-15)},
			sats:    []core.Vec3{sat},
			asg:     []model.Assignment{beam(0, 1, 0, 'A'), beam(0, 3, 1, 'A')},
			failing: CheckBeamSequence,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scn := &core.Scenario{Interferers: tt.interferers}
			for i, p := range tt.users {
				scn.Users = append(scn.Users, core.User{ID: i, Position: p})
			}
			for i, p := range tt.sats {
				scn.Satellites = append(scn.Satellites, core.Satellite{ID: i, Position: p})
			}

			r, err := Validate(scn, tt.asg, core.DefaultConfig())
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if r.Passed() {
				t.Fatal("report passed, want a failure")
			}
			for _, c := range r.Checks {
				if c.Passed == (c.Name == tt.failing) {
					t.Fatalf("check %s passed=%v (%s)", c.Name, c.Passed, c.Detail)
				}
			}
			if check(r, tt.failing).Detail == "" {
				t.Fatalf("%s failed without detail", tt.failing)
			}
		})
	}
}

func TestValidateVisibilityReportsElevation(t *testing.T) {
	scn := &core.Scenario{
		Users:      []core.User{{ID: 0, Position: user}},
		Satellites: []core.Satellite{{ID: 0, Position: from(user, 1000, 50)}},
	}
	r, err := Validate(scn, []model.Assignment{beam(0, 1, 0, 'A')}, core.DefaultConfig())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	c := check(r, CheckVisibility)
	if c.Passed {
		t.Fatal("visibility passed for a satellite 40 degrees above the horizon")
	}
	var satID, userID int
	var elev, minElev float64
	if _, err := fmt.Sscanf(c.Detail, "sat %d outside user %d's field of view: %f degrees elevation (min %f)",
		&satID, &userID, &elev, &minElev); err != nil {
		t.Fatalf("unexpected detail %q: %v", c.Detail, err)
	}
	if satID != 1 || userID != 1 || math.Abs(elev-40) > 0.01 || minElev != 45 {
		t.Fatalf("detail %q: sat %d user %d elevation %v min %v", c.Detail, satID, userID, elev, minElev)
	}
}

func TestValidateOverCapacity(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.BeamsPerSatellite = 1
	scn := &core.Scenario{
		Users:      []core.User{{ID: 0, Position: user}, {ID: 1, Position: from(sat, 629, 180-15)}},
		Satellites: []core.Satellite{{ID: 0, Position: sat}},
	}
	r, err := Validate(scn, []model.Assignment{beam(0, 1, 0, 'A'), beam(0, 2, 1, 'A')}, cfg)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if check(r, CheckBeamSequence).Passed {
		t.Fatal("beam sequence passed over capacity")
	}
}

func TestValidateUnknownReferences(t *testing.T) {
	scn := &core.Scenario{
		Users:      []core.User{{ID: 0, Position: user}},
		Satellites: []core.Satellite{{ID: 0, Position: sat}},
	}
	if _, err := Validate(scn, []model.Assignment{beam(3, 1, 0, 'A')}, core.DefaultConfig()); err == nil {
		t.Fatal("expected error for unknown satellite")
	}
	if _, err := Validate(scn, []model.Assignment{beam(0, 1, 1, 'A')}, core.DefaultConfig()); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
