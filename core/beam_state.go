package core

import "github.com/signalsfoundry/beam-planner/model"

// colorSlot holds the committed beam targets of one color on one satellite.
type colorSlot struct {
	targets []Vec3
}

// SatelliteBeams is the per-satellite resource aggregate: one slot per color
// and a single beam counter shared across them. Only the assigner mutates it.
type SatelliteBeams struct {
	Satellite Satellite

	slots [model.MaxColors]colorSlot
	count int
}

// Count returns the number of beams committed on the satellite.
func (b *SatelliteBeams) Count() int { return b.count }

// Targets returns the committed targets for the color at palette index c.
// The returned slice must not be modified.
func (b *SatelliteBeams) Targets(c int) []Vec3 { return b.slots[c].targets }

// conflicts reports whether a beam to target on color c would fall within
// minSep degrees of an existing beam of that color, as seen from the
// satellite.
func (b *SatelliteBeams) conflicts(c int, target Vec3, minSep float32) bool {
	for _, t := range b.slots[c].targets {
		if AngleDegrees(b.Satellite.Position, target, t) < minSep {
			return true
		}
	}
	return false
}

// BeamState is the arena of per-satellite beam aggregates, indexed by
// satellite parse order.
type BeamState struct {
	capacity int
	colors   int
	sats     []SatelliteBeams
}

// NewBeamState allocates empty beam state for every satellite in the scenario.
func NewBeamState(scn *Scenario, cfg Config) *BeamState {
	st := &BeamState{
		capacity: cfg.BeamsPerSatellite,
		colors:   cfg.ColorsPerSatellite,
		sats:     make([]SatelliteBeams, len(scn.Satellites)),
	}
	for i, sat := range scn.Satellites {
		st.sats[i].Satellite = sat
	}
	return st
}

// Len returns the number of satellites tracked.
func (st *BeamState) Len() int { return len(st.sats) }

// At returns the aggregate for the satellite at parse index i.
func (st *BeamState) At(i int) *SatelliteBeams { return &st.sats[i] }

// Full reports whether the satellite at index i has no beams left.
func (st *BeamState) Full(i int) bool {
	return st.sats[i].count >= st.capacity
}

// Commit records a beam to target on color c of satellite i and returns the
// new 1-based beam number.
func (st *BeamState) Commit(i, c int, target Vec3) (int, error) {
	if i < 0 || i >= len(st.sats) {
		return 0, invariantf("satellite index %d out of range [0, %d)", i, len(st.sats))
	}
	if c < 0 || c >= st.colors {
		return 0, invariantf("color index %d out of range [0, %d)", c, st.colors)
	}
	b := &st.sats[i]
	if b.count >= st.capacity {
		return 0, invariantf("satellite %d already has %d beams", b.Satellite.ID+1, b.count)
	}
	b.slots[c].targets = append(b.slots[c].targets, target)
	b.count++
	return b.count, nil
}
