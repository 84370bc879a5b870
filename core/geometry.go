package core

import "math"

// EarthRadiusKm is the mean Earth radius used when placing ground users
// (kilometres).
const EarthRadiusKm = 6371.0

// Vec3 is an ECEF position. Units are whatever the scenario uses, as long as
// they are consistent; every check in this package is angular.
type Vec3 struct {
	X, Y, Z float32
}

// Origin is the centre of the Earth.
var Origin = Vec3{}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Scale returns v scaled by k.
func (v Vec3) Scale(k float32) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Unit returns v normalised to length one. The zero vector has no direction;
// its result is NaN in every component.
func (v Vec3) Unit() Vec3 {
	return v.Scale(1 / v.Norm())
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float32 {
	return v.Sub(other).Norm()
}

// AngleDegrees returns the angle at vertex between the directions to a and to
// b, in degrees within [0, 180]. The cosine is clamped to [-1, 1] so rounding
// never pushes acos out of its domain.
//
// The result is undefined when vertex coincides with a or b.
func AngleDegrees(vertex, a, b Vec3) float32 {
	ua := a.Sub(vertex).Unit()
	ub := b.Sub(vertex).Unit()

	cos := ua.Dot(ub)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return float32(math.Acos(float64(cos)) * 180.0 / math.Pi)
}

// ElevationDegrees returns the elevation angle of the target as seen from
// the observer, in degrees. 0° = geometric horizon, 90° = overhead.
func ElevationDegrees(observer, target Vec3) float32 {
	return AngleDegrees(observer, Origin, target) - 90
}
