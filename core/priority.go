package core

import "slices"

// SortByCoverage orders entries so users with the fewest visible satellites
// are scheduled first. The sort is stable: users with equal counts keep
// their scenario order.
func SortByCoverage(entries []VisibilityEntry) {
	slices.SortStableFunc(entries, func(a, b VisibilityEntry) int {
		return len(a.Satellites) - len(b.Satellites)
	})
}
