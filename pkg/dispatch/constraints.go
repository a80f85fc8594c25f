package dispatch

import (
	"fmt"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
)

// Constraints filter candidates before any routing. Nil fields are not checked.
type Constraints struct {
	MinAvailableTrucks     *int     `json:"min_available_trucks,omitempty" validate:"omitempty,gte=0"`
	MinAvailableAmbulances *int     `json:"min_available_ambulances,omitempty" validate:"omitempty,gte=0"`
	MustBeOperational      bool     `json:"must_be_operational"`
	MaxDistanceKm          *float64 `json:"max_distance_km,omitempty" validate:"omitempty,gt=0"`
}

func IntPtr(v int) *int {
	return &v
}

func FloatPtr(v float64) *float64 {
	return &v
}

// check returns the first violated constraint of f when dispatched as kind. Truck minimums only
// bind fire stations and ambulance minimums only hospitals. The distance check uses straight line
// (geodesic) distance although ranking later uses road distance.
func (c Constraints) check(kind facility.Kind, f facility.Facility, disaster geo.Coordinate) (RejectReason, string, bool) {
	if kind == facility.FireStation && c.MinAvailableTrucks != nil && f.AvailableTrucks < *c.MinAvailableTrucks {
		return InsufficientTrucks, fmt.Sprintf("%d < %d trucks", f.AvailableTrucks, *c.MinAvailableTrucks), false
	}
	if kind == facility.Hospital && c.MinAvailableAmbulances != nil &&
		f.AvailableAmbulances < *c.MinAvailableAmbulances {
		return InsufficientAmbulances, fmt.Sprintf("%d < %d ambulances", f.AvailableAmbulances, *c.MinAvailableAmbulances), false
	}
	if c.MustBeOperational && !f.Operational {
		return NotOperational, "not operational", false
	}
	if c.MaxDistanceKm != nil {
		d := geo.GeodesicDistanceKm(f.Coord, disaster)
		if d > *c.MaxDistanceKm {
			return TooFar, fmt.Sprintf("%.2f km > %.2f km", d, *c.MaxDistanceKm), false
		}
	}
	return "", "", true
}
