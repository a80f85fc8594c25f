package dispatch

import (
	"github.com/google/uuid"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
)

type State string

const (
	CandidatesGathered  State = "CANDIDATES_GATHERED"
	ConstraintsFiltered State = "CONSTRAINTS_FILTERED"
	RoutesComputed      State = "ROUTES_COMPUTED"
	Selected            State = "SELECTED"
	NoneAvailable       State = "NONE_AVAILABLE"
)

type RejectReason string

const (
	InsufficientTrucks     RejectReason = "insufficient_trucks"
	InsufficientAmbulances RejectReason = "insufficient_ambulances"
	NotOperational         RejectReason = "not_operational"
	TooFar                 RejectReason = "too_far"
	Excluded               RejectReason = "excluded"
	NoRoute                RejectReason = "no_route"
	RouteTimedOut          RejectReason = "route_timed_out"
)

type Rejection struct {
	Facility facility.Facility `json:"facility"`
	Position int               `json:"position"`
	Reason   RejectReason      `json:"reason"`
	Detail   string            `json:"detail,omitempty"`
}

// Selection is a routable candidate. Position is its index in the candidate list.
type Selection struct {
	Facility                facility.Facility   `json:"facility"`
	Position                int                 `json:"position"`
	Route                   routing.RouteResult `json:"route"`
	DistanceKm              float64             `json:"distance_km"`
	EstimatedArrivalMinutes float64             `json:"estimated_arrival_minutes"`
	Selected                bool                `json:"selected"`
}

type Outcome struct {
	RequestID  uuid.UUID      `json:"request_id"`
	Kind       facility.Kind  `json:"kind"`
	Disaster   geo.Coordinate `json:"disaster"`
	State      State          `json:"state"`
	Trace      []State        `json:"trace"`
	Selected   *Selection     `json:"selected"`
	Ranked     []Selection    `json:"ranked"`
	Rejections []Rejection    `json:"rejections"`
}

func newOutcome(kind facility.Kind, disaster geo.Coordinate) *Outcome {
	return &Outcome{
		RequestID:  uuid.New(),
		Kind:       kind,
		Disaster:   disaster,
		State:      CandidatesGathered,
		Trace:      []State{CandidatesGathered},
		Ranked:     make([]Selection, 0),
		Rejections: make([]Rejection, 0),
	}
}

// advance moves forward only, a state already passed is ignored.
func (o *Outcome) advance(s State) {
	if stateOrder(s) <= stateOrder(o.State) {
		return
	}
	o.State = s
	o.Trace = append(o.Trace, s)
}

func stateOrder(s State) int {
	switch s {
	case CandidatesGathered:
		return 0
	case ConstraintsFiltered:
		return 1
	case RoutesComputed:
		return 2
	case Selected, NoneAvailable:
		return 3
	default:
		return -1
	}
}

func (o *Outcome) reject(f facility.Facility, pos int, reason RejectReason, detail string) {
	o.Rejections = append(o.Rejections, Rejection{Facility: f, Position: pos, Reason: reason, Detail: detail})
}

// NoResponder is true when no candidate survived constraints and routing.
func (o *Outcome) NoResponder() bool {
	return o.Selected == nil
}

// RejectionOf returns the rejection recorded for the candidate at pos.
func (o *Outcome) RejectionOf(pos int) (Rejection, bool) {
	for _, r := range o.Rejections {
		if r.Position == pos {
			return r, true
		}
	}
	return Rejection{}, false
}
