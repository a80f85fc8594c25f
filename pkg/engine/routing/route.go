package routing

import (
	"encoding/json"
	"fmt"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
)

type WeightKind uint8

const (
	Length WeightKind = iota
	TravelTime
)

// Of. edge cost used for path selection.
func (w WeightKind) Of(e *da.Edge) float64 {
	if w == TravelTime {
		return e.GetTravelTime()
	}
	return e.GetLength()
}

func (w WeightKind) String() string {
	switch w {
	case TravelTime:
		return "travel_time"
	default:
		return "length"
	}
}

func ParseWeightKind(s string) (WeightKind, error) {
	switch s {
	case "", "length":
		return Length, nil
	case "travel_time":
		return TravelTime, nil
	default:
		return Length, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown weight %q, expected length or travel_time", s)
	}
}

type RouteStatus uint8

const (
	Found RouteStatus = iota
	NotFound
	TimedOut
)

func (s RouteStatus) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("RouteStatus(%d)", uint8(s))
	}
}

func (s RouteStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// RouteResult is produced fresh per query. Path fields are only set when Status is Found.
type RouteResult struct {
	Status      RouteStatus      `json:"status"`
	Origin      da.Index         `json:"origin_node"`
	Destination da.Index         `json:"destination_node"`
	Nodes       []da.Index       `json:"nodes,omitempty"`
	Edges       []da.EdgeKey     `json:"edges,omitempty"`
	Coords      []geo.Coordinate `json:"coords,omitempty"`
	Polyline    string           `json:"polyline,omitempty"`
	DistanceM   float64          `json:"distance_m"`
	TravelTimeS float64          `json:"travel_time_s"`
	Weight      WeightKind       `json:"-"`
}

func (r RouteResult) Found() bool {
	return r.Status == Found
}

func (r RouteResult) DistanceKm() float64 {
	return r.DistanceM / 1000
}

// Err is ErrTimeout for TimedOut results, nil otherwise. NotFound is a result, not an error.
func (r RouteResult) Err() error {
	if r.Status == TimedOut {
		return util.WrapErrorf(nil, util.ErrTimeout, "route %d -> %d", r.Origin, r.Destination)
	}
	return nil
}

func newNotFound(o, d da.Index, w WeightKind) RouteResult {
	return RouteResult{Status: NotFound, Origin: o, Destination: d, Weight: w}
}

func newTimedOut(o, d da.Index, w WeightKind) RouteResult {
	return RouteResult{Status: TimedOut, Origin: o, Destination: d, Weight: w}
}

// newFound. distance and travel time are always summed over the chosen edges, whatever weight picked them.
func newFound(g *da.Graph, nodes []da.Index, edges []*da.Edge, w WeightKind) RouteResult {
	res := RouteResult{
		Status:      Found,
		Origin:      nodes[0],
		Destination: nodes[len(nodes)-1],
		Nodes:       nodes,
		Edges:       make([]da.EdgeKey, 0, len(edges)),
		Coords:      make([]geo.Coordinate, 0, len(nodes)),
		Weight:      w,
	}
	for _, e := range edges {
		res.Edges = append(res.Edges, e.GetKey())
		res.DistanceM += e.GetLength()
		res.TravelTimeS += e.GetTravelTime()
	}
	for _, v := range nodes {
		res.Coords = append(res.Coords, g.GetVertexCoordinate(v))
	}
	res.Polyline = geo.PolylineFromCoords(res.Coords)
	return res
}
