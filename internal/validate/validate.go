// Package validate checks a beam plan against its scenario independently of
// the planner that produced it.
package validate

import (
	"fmt"
	"sort"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/model"
)

// Check names, in the order they run.
const (
	CheckCoverage         = "coverage"
	CheckVisibility       = "visibility"
	CheckSelfInterference = "self_interference"
	CheckInterferer       = "interferer"
	CheckBeamSequence     = "beam_sequence"
)

// CheckResult is the outcome of one check. Detail describes the first
// violation found, or is empty when the check passed.
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// Report collects every check for one solution.
type Report struct {
	Users   int
	Covered int
	Checks  []CheckResult
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Coverage is the fraction of users with a beam.
func (r *Report) Coverage() float64 {
	if r.Users == 0 {
		return 0
	}
	return float64(r.Covered) / float64(r.Users)
}

// Recorder receives check outcomes; observability.PlannerCollector
// implements it.
type Recorder interface {
	RecordValidation(check string, passed bool)
}

// Record forwards every check outcome to rec.
func (r *Report) Record(rec Recorder) {
	if rec == nil {
		return
	}
	for _, c := range r.Checks {
		rec.RecordValidation(c.Name, c.Passed)
	}
}

// Validate runs every check. Assignment ids must already be known to scn;
// solution.Read guarantees that.
func Validate(scn *core.Scenario, assignments []model.Assignment, cfg core.Config) (*Report, error) {
	sats := make(map[int]core.Vec3, len(scn.Satellites))
	for _, s := range scn.Satellites {
		sats[s.ID] = s.Position
	}
	for _, a := range assignments {
		if _, ok := sats[a.SatelliteID]; !ok {
			return nil, fmt.Errorf("assignment references unknown sat %d", a.SatelliteID+1)
		}
		if a.UserID < 0 || a.UserID >= len(scn.Users) {
			return nil, fmt.Errorf("assignment references unknown user %d", a.UserID+1)
		}
	}

	v := &validator{scn: scn, sats: sats, cfg: cfg, asg: assignments}
	r := &Report{Users: len(scn.Users)}
	r.Checks = []CheckResult{
		v.coverage(r),
		v.visibility(),
		v.selfInterference(),
		v.interferers(),
		v.beamSequence(),
	}
	return r, nil
}

type validator struct {
	scn  *core.Scenario
	sats map[int]core.Vec3
	cfg  core.Config
	asg  []model.Assignment
}

func (v *validator) userPos(a model.Assignment) core.Vec3 { return v.scn.Users[a.UserID].Position }

func (v *validator) coverage(r *Report) CheckResult {
	res := CheckResult{Name: CheckCoverage, Passed: true}
	seen := make(map[int]struct{}, len(v.asg))
	for _, a := range v.asg {
		if _, dup := seen[a.UserID]; dup {
			if res.Passed {
				res.Passed = false
				res.Detail = fmt.Sprintf("user %d is covered multiple times", a.UserID+1)
			}
			continue
		}
		seen[a.UserID] = struct{}{}
	}
	r.Covered = len(seen)
	return res
}

func (v *validator) visibility() CheckResult {
	limit := 180 - v.cfg.MaxUserVisibleAngleDeg
	for _, a := range v.asg {
		user, sat := v.userPos(a), v.sats[a.SatelliteID]
		if core.AngleDegrees(user, core.Origin, sat) <= limit {
			return CheckResult{Name: CheckVisibility, Detail: fmt.Sprintf(
				"sat %d outside user %d's field of view: %.3f degrees elevation (min %.1f)",
				a.SatelliteID+1, a.UserID+1, core.ElevationDegrees(user, sat), 90-v.cfg.MaxUserVisibleAngleDeg)}
		}
	}
	return CheckResult{Name: CheckVisibility, Passed: true}
}

func (v *validator) selfInterference() CheckResult {
	type slot struct {
		sat   int
		color model.Color
	}
	bySlot := make(map[slot][]model.Assignment)
	var order []slot
	for _, a := range v.asg {
		k := slot{a.SatelliteID, a.Color}
		if _, ok := bySlot[k]; !ok {
			order = append(order, k)
		}
		bySlot[k] = append(bySlot[k], a)
	}

	for _, k := range order {
		beams := bySlot[k]
		satPos := v.sats[k.sat]
		for i := range beams {
			for j := i + 1; j < len(beams); j++ {
				angle := core.AngleDegrees(satPos, v.userPos(beams[i]), v.userPos(beams[j]))
				if angle < v.cfg.SelfInterferenceMinSeparationDeg {
					return CheckResult{Name: CheckSelfInterference, Detail: fmt.Sprintf(
						"sat %d beams %d and %d interfere: %.3f degrees apart",
						k.sat+1, beams[i].Beam, beams[j].Beam, angle)}
				}
			}
		}
	}
	return CheckResult{Name: CheckSelfInterference, Passed: true}
}

func (v *validator) interferers() CheckResult {
	for _, a := range v.asg {
		for i, ip := range v.scn.Interferers {
			angle := core.AngleDegrees(v.userPos(a), v.sats[a.SatelliteID], ip)
			if angle < v.cfg.InterfererMinSeparationDeg {
				return CheckResult{Name: CheckInterferer, Detail: fmt.Sprintf(
					"sat %d beam %d interferes with interferer %d: %.3f degrees apart",
					a.SatelliteID+1, a.Beam, i+1, angle)}
			}
		}
	}
	return CheckResult{Name: CheckInterferer, Passed: true}
}

// beamSequence requires each satellite's beam numbers to be exactly 1..k for
// some k within capacity.
func (v *validator) beamSequence() CheckResult {
	beams := make(map[int][]int)
	for _, a := range v.asg {
		beams[a.SatelliteID] = append(beams[a.SatelliteID], a.Beam)
	}
	ids := make([]int, 0, len(beams))
	for id := range beams {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		bs := beams[id]
		if len(bs) > v.cfg.BeamsPerSatellite {
			return CheckResult{Name: CheckBeamSequence, Detail: fmt.Sprintf(
				"sat %d has %d beams, capacity %d", id+1, len(bs), v.cfg.BeamsPerSatellite)}
		}
		sort.Ints(bs)
		for i, b := range bs {
			if b != i+1 {
				return CheckResult{Name: CheckBeamSequence, Detail: fmt.Sprintf(
					"sat %d beam numbers are not 1..%d (found %d at position %d)", id+1, len(bs), b, i+1)}
			}
		}
	}
	return CheckResult{Name: CheckBeamSequence, Passed: true}
}
