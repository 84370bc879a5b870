package core

import "github.com/signalsfoundry/beam-planner/model"

// AssignStats counts what happened during greedy assignment.
type AssignStats struct {
	Served          int
	Unserved        int
	SatelliteFull   int // visible satellite skipped because it had no beams left
	ColorConflicts  int // (satellite, color) tried and rejected for self-interference
	SatellitesTried int
}

// Assign walks entries in order and gives each user the first beam that fits:
// the first visible satellite with capacity left, on the first color whose
// existing beams are all far enough away. Users that fit nowhere are left
// unserved. Records are returned in assignment order.
//
// Assign mutates state and must not run concurrently with anything else that
// touches it.
func Assign(scn *Scenario, entries []VisibilityEntry, state *BeamState, cfg Config) ([]model.Assignment, AssignStats, error) {
	var (
		out   []model.Assignment
		stats AssignStats
	)

	for _, entry := range entries {
		if entry.UserID < 0 || entry.UserID >= len(scn.Users) {
			return nil, stats, invariantf("visibility entry for unknown user %d", entry.UserID)
		}
		user := scn.Users[entry.UserID]

		rec, ok, err := assignUser(user, entry.Satellites, state, cfg, &stats)
		if err != nil {
			return nil, stats, err
		}
		if !ok {
			stats.Unserved++
			continue
		}
		stats.Served++
		out = append(out, rec)
	}
	return out, stats, nil
}

func assignUser(user User, visible []int, state *BeamState, cfg Config, stats *AssignStats) (model.Assignment, bool, error) {
	for _, si := range visible {
		stats.SatellitesTried++
		if state.Full(si) {
			stats.SatelliteFull++
			continue
		}
		beams := state.At(si)
		for c := 0; c < cfg.ColorsPerSatellite; c++ {
			if beams.conflicts(c, user.Position, cfg.SelfInterferenceMinSeparationDeg) {
				stats.ColorConflicts++
				continue
			}
			beam, err := state.Commit(si, c, user.Position)
			if err != nil {
				return model.Assignment{}, false, err
			}
			return model.Assignment{
				SatelliteID: beams.Satellite.ID,
				Beam:        beam,
				UserID:      user.ID,
				Color:       model.ColorAt(c),
			}, true, nil
		}
	}
	return model.Assignment{}, false, nil
}
