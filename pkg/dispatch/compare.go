package dispatch

import (
	"encoding/json"
	"slices"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
)

type ComparisonStatus uint8

const (
	// rerouted path is the primary path
	Unchanged ComparisonStatus = iota
	// blocking forced a different path
	Detour
	// blocking left no path
	Cut
	// no primary path to compare against
	Unavailable
	// a search was cancelled, nothing is known about the blocked network
	TimedOut
)

func (s ComparisonStatus) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Detour:
		return "detour"
	case Cut:
		return "cut"
	case TimedOut:
		return "timed_out"
	default:
		return "unavailable"
	}
}

func (s ComparisonStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

type RouteComparison struct {
	Status         ComparisonStatus    `json:"status"`
	Primary        routing.RouteResult `json:"primary"`
	Rerouted       routing.RouteResult `json:"rerouted"`
	ExtraDistanceM float64             `json:"extra_distance_m"`
}

// CompareRoutes compares the route before blocking with the route after.
func CompareRoutes(primary, rerouted routing.RouteResult) RouteComparison {
	cmp := RouteComparison{Primary: primary, Rerouted: rerouted}
	switch {
	case primary.Status == routing.TimedOut || rerouted.Status == routing.TimedOut:
		cmp.Status = TimedOut
	case !primary.Found():
		cmp.Status = Unavailable
	case !rerouted.Found():
		cmp.Status = Cut
	case slices.Equal(primary.Nodes, rerouted.Nodes):
		cmp.Status = Unchanged
	default:
		cmp.Status = Detour
		cmp.ExtraDistanceM = rerouted.DistanceM - primary.DistanceM
	}
	return cmp
}
