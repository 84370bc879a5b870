package core

// User is a ground terminal. ID is its zero-based position in the scenario.
type User struct {
	ID       int
	Position Vec3
}

// Satellite is a managed satellite. ID is the scenario id rebased to zero.
type Satellite struct {
	ID       int
	Position Vec3
}

// Scenario is the immutable input to a planning run. Satellites keep their
// parse order, which is also the order visibility lists are built in.
type Scenario struct {
	Users       []User
	Satellites  []Satellite
	Interferers []Vec3
}

// SatelliteIndex returns the parse-order index of the satellite with the
// given zero-based id.
func (s *Scenario) SatelliteIndex(id int) (int, bool) {
	for i, sat := range s.Satellites {
		if sat.ID == id {
			return i, true
		}
	}
	return 0, false
}
