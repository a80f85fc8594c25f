package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/dispatch"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/closure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geocoder"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/roster"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

type DispatchSettings struct {
	SearchRadiusM   float64
	MaxResults      int
	AssumedSpeedKmh float64
	Workers         int
}

// DispatchRequest locates a disaster by Address or Location. BlockRadiusM > 0 blocks the roads
// around it before routing, only for this request.
type DispatchRequest struct {
	Address      string
	Location     *geo.Coordinate
	Kinds        []facility.Kind
	Constraints  dispatch.Constraints
	Exclude      []facility.Facility
	BlockRadiusM float64
	Weight       routing.WeightKind
	WithGeoJSON  bool
}

type DispatchReport struct {
	ID        uuid.UUID                   `json:"id"`
	Disaster  geo.Coordinate              `json:"disaster"`
	Blocked   closure.BlockResult         `json:"blocked"`
	Outcomes  []*dispatch.Outcome         `json:"outcomes"`
	Decisions []dispatch.DispatchDecision `json:"decisions"`
	GeoJSON   *geojson.FeatureCollection  `json:"geojson,omitempty"`
}

type DispatchService struct {
	log      *zap.Logger
	engine   RoutingEngine
	locator  FacilityLocator
	geocoder geocoder.Geocoder
	roster   func() *roster.Roster
	settings DispatchSettings
	now      func() time.Time
}

// NewDispatchService. geocoder and stations may be nil, then only coordinates are accepted and
// only map stations are considered.
func NewDispatchService(log *zap.Logger, engine RoutingEngine, locator FacilityLocator, gc geocoder.Geocoder,
	stations func() *roster.Roster, settings DispatchSettings) *DispatchService {
	if stations == nil {
		stations = func() *roster.Roster { return nil }
	}
	return &DispatchService{
		log:      log,
		engine:   engine,
		locator:  locator,
		geocoder: gc,
		roster:   stations,
		settings: settings,
		now:      time.Now,
	}
}

func (ds *DispatchService) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	if ds.geocoder == nil {
		return geo.Coordinate{}, util.WrapErrorf(nil, util.ErrBadParamInput, "geocoding is not configured")
	}
	coord, ok, err := ds.geocoder.Geocode(ctx, address)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if !ok {
		return geo.Coordinate{}, util.WrapErrorf(nil, util.ErrNotFound, "address %q not found", address)
	}
	return coord, nil
}

func (ds *DispatchService) locate(ctx context.Context, req DispatchRequest) (geo.Coordinate, error) {
	if req.Location != nil {
		if !req.Location.Valid() {
			return geo.Coordinate{}, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid disaster location")
		}
		return *req.Location, nil
	}
	if req.Address == "" {
		return geo.Coordinate{}, util.WrapErrorf(nil, util.ErrBadParamInput, "address or location is required")
	}
	return ds.Geocode(ctx, req.Address)
}

// Dispatch selects one responder per requested kind. Roads are blocked on a private copy of the
// network so concurrent disasters never see each other's closures.
func (ds *DispatchService) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchReport, error) {
	disaster, err := ds.locate(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(req.Kinds) == 0 {
		req.Kinds = []facility.Kind{facility.FireStation, facility.Hospital}
	}

	scenario, err := ds.engine.Scenario()
	if err != nil {
		return nil, err
	}

	report := &DispatchReport{
		ID:        uuid.New(),
		Disaster:  disaster,
		Outcomes:  make([]*dispatch.Outcome, 0, len(req.Kinds)),
		Decisions: make([]dispatch.DispatchDecision, 0, len(req.Kinds)),
	}
	if req.BlockRadiusM > 0 {
		report.Blocked, err = scenario.BlockArea(disaster, req.BlockRadiusM)
		if err != nil {
			return nil, err
		}
	}

	selector := dispatch.NewSelector(scenario, ds.log,
		dispatch.WithWorkers(ds.settings.Workers),
		dispatch.WithAssumedSpeed(ds.settings.AssumedSpeedKmh),
		dispatch.WithWeight(req.Weight),
	)

	for _, kind := range req.Kinds {
		found, err := ds.locator.FindFacilities(ctx, disaster, kind, ds.settings.SearchRadiusM, ds.settings.MaxResults)
		if err != nil {
			return nil, err
		}
		candidates := roster.Merge(found, ds.roster().Of(kind))

		outcome, err := selector.Select(ctx, kind, candidates, disaster, req.Constraints, req.Exclude...)
		if err != nil {
			return nil, err
		}
		report.Outcomes = append(report.Outcomes, outcome)
		if decision, ok := outcome.Decision(ds.now()); ok {
			report.Decisions = append(report.Decisions, decision)
		}
	}

	if req.WithGeoJSON {
		report.GeoJSON = dispatch.FeatureCollection(disaster, report.Outcomes...)
	}

	ds.log.Info("dispatch computed", zap.String("id", report.ID.String()),
		zap.Float64("lat", disaster.Lat), zap.Float64("lon", disaster.Lon),
		zap.Int("blocked_edges", report.Blocked.Removed), zap.Int("decisions", len(report.Decisions)))
	return report, nil
}
