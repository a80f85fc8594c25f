package dispatch

import (
	"context"
	"sort"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/concurrent"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/metrics"
	"go.uber.org/zap"
)

type SelectorOption func(*Selector)

func WithWorkers(n int) SelectorOption {
	return func(s *Selector) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithAssumedSpeed(kmh float64) SelectorOption {
	return func(s *Selector) {
		if kmh > 0 {
			s.speedKmh = kmh
		}
	}
}

func WithWeight(w routing.WeightKind) SelectorOption {
	return func(s *Selector) {
		s.weight = w
	}
}

// Selector ranks candidate stations by road distance to a disaster.
type Selector struct {
	finder   routing.PathFinder
	weight   routing.WeightKind
	workers  int
	speedKmh float64
	log      *zap.Logger
}

func NewSelector(finder routing.PathFinder, log *zap.Logger, opts ...SelectorOption) *Selector {
	s := &Selector{
		finder:   finder,
		weight:   routing.Length,
		workers:  4,
		speedKmh: pkg.DEFAULT_ASSUMED_SPEED_KMH,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type routeJob struct {
	pos int
	f   facility.Facility
}

type routeOutput struct {
	route routing.RouteResult
	err   error
}

// Select filters candidates by constraints, routes every survivor to disaster and picks the
// smallest road distance. Ties go to the earliest candidate. Candidates equal to one of exclude
// are rejected without routing. An error is only returned when the path finder fails.
func (s *Selector) Select(ctx context.Context, kind facility.Kind, candidates []facility.Facility,
	disaster geo.Coordinate, c Constraints, exclude ...facility.Facility) (*Outcome, error) {
	out := newOutcome(kind, disaster)

	survivors := make([]routeJob, 0, len(candidates))
	for i, f := range candidates {
		if isExcluded(f, exclude) {
			out.reject(f, i, Excluded, "already dispatched")
			continue
		}
		if reason, detail, ok := c.check(kind, f, disaster); !ok {
			s.log.Debug("candidate rejected", zap.String("facility", f.Name),
				zap.String("reason", string(reason)), zap.String("detail", detail))
			out.reject(f, i, reason, detail)
			continue
		}
		survivors = append(survivors, routeJob{pos: i, f: f})
	}
	out.advance(ConstraintsFiltered)

	// slotted by job order, so ranking does not depend on which worker finished first
	routes := concurrent.Map(ctx, s.workers, survivors, func(ctx context.Context, job routeJob) routeOutput {
		res, err := s.finder.ShortestPath(ctx, job.f.Coord, disaster, s.weight)
		return routeOutput{route: res, err: err}
	})

	for i, job := range survivors {
		r := routes[i]
		if r.err != nil {
			return out, r.err
		}
		switch r.route.Status {
		case routing.Found:
			out.Ranked = append(out.Ranked, Selection{
				Facility:                job.f,
				Position:                job.pos,
				Route:                   r.route,
				DistanceKm:              r.route.DistanceKm(),
				EstimatedArrivalMinutes: EstimateArrivalMinutes(r.route.DistanceKm(), s.speedKmh),
			})
		case routing.TimedOut:
			out.reject(job.f, job.pos, RouteTimedOut, "path search cancelled")
		default:
			out.reject(job.f, job.pos, NoRoute, "no road path to the disaster")
		}
	}
	out.advance(RoutesComputed)

	// stable on position order, equal distances keep the earlier candidate first
	sort.SliceStable(out.Ranked, func(i, j int) bool {
		return out.Ranked[i].DistanceKm < out.Ranked[j].DistanceKm
	})
	sort.SliceStable(out.Rejections, func(i, j int) bool {
		return out.Rejections[i].Position < out.Rejections[j].Position
	})

	if len(out.Ranked) > 0 {
		out.Ranked[0].Selected = true
		sel := out.Ranked[0]
		out.Selected = &sel
		out.advance(Selected)
	} else {
		out.advance(NoneAvailable)
	}

	for _, r := range out.Rejections {
		metrics.CandidatesRejected.WithLabelValues(string(r.Reason)).Inc()
	}
	metrics.DispatchOutcomes.WithLabelValues(kind.String(), string(out.State)).Inc()

	fields := []zap.Field{
		zap.String("request_id", out.RequestID.String()),
		zap.String("kind", kind.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("routed", len(survivors)),
		zap.Int("rejected", len(out.Rejections)),
		zap.String("state", string(out.State)),
	}
	if out.Selected != nil {
		fields = append(fields, zap.String("selected", out.Selected.Facility.Name),
			zap.Float64("distance_km", out.Selected.DistanceKm))
	}
	s.log.Info("dispatch selection", fields...)

	return out, nil
}

// SelectBackup re-runs the selection without primary.
func (s *Selector) SelectBackup(ctx context.Context, kind facility.Kind, candidates []facility.Facility,
	disaster geo.Coordinate, c Constraints, primary facility.Facility) (*Outcome, error) {
	return s.Select(ctx, kind, candidates, disaster, c, primary)
}

func isExcluded(f facility.Facility, exclude []facility.Facility) bool {
	for _, e := range exclude {
		if e == f {
			return true
		}
	}
	return false
}

// EstimateArrivalMinutes. distanceKm / speedKmh * 60, a non positive speed falls back to the default speed.
func EstimateArrivalMinutes(distanceKm, speedKmh float64) float64 {
	if speedKmh <= 0 {
		speedKmh = pkg.DEFAULT_ASSUMED_SPEED_KMH
	}
	return distanceKm / speedKmh * 60
}
