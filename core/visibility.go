package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// VisibilityEntry lists the satellites a user may be served by, as indices
// into Scenario.Satellites in parse order. It is not modified after
// ResolveVisibility returns.
type VisibilityEntry struct {
	UserID     int
	Satellites []int
}

// VisibilityStats counts why (user, satellite) candidates were dropped.
type VisibilityStats struct {
	Candidates int // users × satellites
	OutOfCone  int // outside the user's visibility cone
	Interfered int // too close to an interferer
}

func (s *VisibilityStats) add(o VisibilityStats) {
	s.Candidates += o.Candidates
	s.OutOfCone += o.OutOfCone
	s.Interfered += o.Interfered
}

// ResolveVisibility computes one VisibilityEntry per user, in user order.
//
// Users are independent, so the work is split into contiguous chunks handled
// by up to cfg.Workers goroutines. Each chunk writes only its own slots of the
// result.
func ResolveVisibility(ctx context.Context, scn *Scenario, cfg Config) ([]VisibilityEntry, VisibilityStats, error) {
	entries := make([]VisibilityEntry, len(scn.Users))
	if len(scn.Users) == 0 {
		return entries, VisibilityStats{}, nil
	}

	workers := min(cfg.workers(), len(scn.Users))
	chunk := (len(scn.Users) + workers - 1) / workers
	stats := make([]VisibilityStats, workers)

	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(scn.Users))
		if lo >= hi {
			break
		}
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				entries[i] = resolveUser(scn, cfg, scn.Users[i], &stats[w])
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, VisibilityStats{}, err
	}

	var total VisibilityStats
	for _, s := range stats {
		total.add(s)
	}
	return entries, total, nil
}

func resolveUser(scn *Scenario, cfg Config, u User, stats *VisibilityStats) VisibilityEntry {
	entry := VisibilityEntry{UserID: u.ID}
	minAngle := cfg.minVisibleVertexAngle()

	for si, sat := range scn.Satellites {
		stats.Candidates++
		if AngleDegrees(u.Position, Origin, sat.Position) <= minAngle {
			stats.OutOfCone++
			continue
		}
		if interfered(scn.Interferers, u.Position, sat.Position, cfg.InterfererMinSeparationDeg) {
			stats.Interfered++
			continue
		}
		entry.Satellites = append(entry.Satellites, si)
	}
	return entry
}

func interfered(interferers []Vec3, user, sat Vec3, minSep float32) bool {
	for _, ip := range interferers {
		if AngleDegrees(user, ip, sat) < minSep {
			return true
		}
	}
	return false
}
