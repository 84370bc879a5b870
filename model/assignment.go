package model

import "fmt"

// Assignment records one beam serving one user.
//
// SatelliteID and UserID are zero-based; Beam is the 1-based sequence number
// of the beam on its satellite.
type Assignment struct {
	SatelliteID int
	Beam        int
	UserID      int
	Color       Color
}

// String renders the assignment in the solution line format, with 1-based ids.
func (a Assignment) String() string {
	return fmt.Sprintf("sat %d beam %d user %d color %s",
		a.SatelliteID+1, a.Beam, a.UserID+1, a.Color)
}
