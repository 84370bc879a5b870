package core

import (
	"fmt"
	"runtime"

	"github.com/signalsfoundry/beam-planner/model"
)

// Defaults for a Starlink-style beam planning problem.
const (
	DefaultBeamsPerSatellite          = 32
	DefaultColorsPerSatellite         = model.MaxColors
	DefaultMaxUserVisibleAngleDeg     = 45.0
	DefaultInterfererMinSeparationDeg = 20.0
	DefaultSelfInterferenceMinSepDeg  = 10.0
)

// Config holds the planning limits. A zero Config is not usable directly;
// start from DefaultConfig. Zero separations are legal and disable the
// corresponding check.
type Config struct {
	// BeamsPerSatellite caps the total beams a satellite forms across all
	// colors.
	BeamsPerSatellite int

	// ColorsPerSatellite is how many palette colors are available, taken in
	// palette order. Must be within [1, model.MaxColors].
	ColorsPerSatellite int

	// MaxUserVisibleAngleDeg bounds how far from the user's vertical a
	// serving satellite may be.
	MaxUserVisibleAngleDeg float32

	// InterfererMinSeparationDeg is the minimum angle, seen from the user,
	// between the serving satellite and any interferer.
	InterfererMinSeparationDeg float32

	// SelfInterferenceMinSeparationDeg is the minimum angle, seen from the
	// satellite, between two beams of the same color.
	SelfInterferenceMinSeparationDeg float32

	// Workers bounds visibility resolution parallelism. <= 0 means
	// GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		BeamsPerSatellite:                DefaultBeamsPerSatellite,
		ColorsPerSatellite:               DefaultColorsPerSatellite,
		MaxUserVisibleAngleDeg:           DefaultMaxUserVisibleAngleDeg,
		InterfererMinSeparationDeg:       DefaultInterfererMinSeparationDeg,
		SelfInterferenceMinSeparationDeg: DefaultSelfInterferenceMinSepDeg,
	}
}

// Validate reports the first out-of-range limit.
func (c Config) Validate() error {
	switch {
	case c.BeamsPerSatellite < 1:
		return fmt.Errorf("%w: beams per satellite %d < 1", ErrInvalidConfig, c.BeamsPerSatellite)
	case c.ColorsPerSatellite < 1 || c.ColorsPerSatellite > model.MaxColors:
		return fmt.Errorf("%w: colors per satellite %d outside [1, %d]", ErrInvalidConfig, c.ColorsPerSatellite, model.MaxColors)
	case c.MaxUserVisibleAngleDeg <= 0 || c.MaxUserVisibleAngleDeg > 90:
		return fmt.Errorf("%w: max user visible angle %v outside (0, 90]", ErrInvalidConfig, c.MaxUserVisibleAngleDeg)
	case c.InterfererMinSeparationDeg < 0 || c.InterfererMinSeparationDeg > 180:
		return fmt.Errorf("%w: interferer separation %v outside [0, 180]", ErrInvalidConfig, c.InterfererMinSeparationDeg)
	case c.SelfInterferenceMinSeparationDeg < 0 || c.SelfInterferenceMinSeparationDeg > 180:
		return fmt.Errorf("%w: self-interference separation %v outside [0, 180]", ErrInvalidConfig, c.SelfInterferenceMinSeparationDeg)
	}
	return nil
}

// minVisibleVertexAngle is the smallest origin-user-satellite angle that
// still leaves the satellite inside the user's cone. The bound is exclusive.
func (c Config) minVisibleVertexAngle() float32 {
	return 180 - c.MaxUserVisibleAngleDeg
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
