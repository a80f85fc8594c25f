package facility

import (
	"context"
	"sort"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/mapdata"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
)

// Defaults are the resource attributes given to located facilities, the map source carries none.
type Defaults struct {
	AvailableTrucks     int
	AvailableAmbulances int
}

func DefaultResources() Defaults {
	return Defaults{
		AvailableTrucks:     pkg.DEFAULT_AVAILABLE_TRUCKS,
		AvailableAmbulances: pkg.DEFAULT_AVAILABLE_AMBULANCES,
	}
}

// Locator finds stations and hospitals from the map source, independent of road graph state.
type Locator struct {
	source   mapdata.Source
	defaults Defaults
	log      *zap.Logger
}

func NewLocator(source mapdata.Source, defaults Defaults, log *zap.Logger) *Locator {
	return &Locator{
		source:   source,
		defaults: defaults,
		log:      log,
	}
}

type located struct {
	f    Facility
	dist float64
}

// FindFacilities returns up to maxResults facilities of kind within radiusM of center, nearest
// (straight line) first. POIs without geometry are dropped, unnamed ones get a generic name.
func (l *Locator) FindFacilities(ctx context.Context, center geo.Coordinate, kind Kind, radiusM float64,
	maxResults int) ([]Facility, error) {
	if radiusM <= 0 || maxResults < 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid facility search radius %v or max results %d",
			radiusM, maxResults)
	}

	pois, err := l.source.FindPOIs(ctx, center, radiusM, kind.Tag())
	if err != nil {
		return nil, err
	}

	candidates := make([]located, 0, len(pois))
	skipped := 0
	for _, p := range pois {
		if p.Centroid == nil {
			skipped++
			continue
		}
		name := p.Name
		if name == "" {
			name = kind.DefaultName()
		}
		f := Facility{
			Name:        name,
			Coord:       *p.Centroid,
			Kind:        kind,
			Operational: true,
		}
		switch kind {
		case FireStation:
			f.AvailableTrucks = l.defaults.AvailableTrucks
		case Hospital:
			f.AvailableAmbulances = l.defaults.AvailableAmbulances
		}
		candidates = append(candidates, located{f: f, dist: geo.GeodesicDistance(center, f.Coord)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	facilities := make([]Facility, 0, len(candidates))
	for _, c := range candidates {
		facilities = append(facilities, c.f)
	}

	l.log.Info("located facilities",
		zap.String("kind", kind.String()),
		zap.Float64("radius_m", radiusM),
		zap.Int("found", len(pois)),
		zap.Int("without_geometry", skipped),
		zap.Int("returned", len(facilities)))
	return facilities, nil
}
