package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/config"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/dispatch"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/closure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geocoder"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/http/usecases"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/logger"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/mapdata"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/roster"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
)

var (
	configDir   = flag.String("config_dir", "./data/", "directory holding config.yaml")
	region      = flag.String("region", "", "region to load, overrides DEFAULT_REGION")
	origin      = flag.String("origin", "201 S Dearborn St, Chicago, IL", "responder address or lat,lon")
	disaster    = flag.String("disaster", "1060 W Addison St, Chicago, IL", "disaster address or lat,lon")
	destination = flag.String("destination", "875 N Michigan Ave, Chicago, IL", "destination address or lat,lon")
	radius      = flag.Float64("radius", 0, "blocking radius around the disaster in meters, 0 takes BLOCK_RADIUS_M")
	weight      = flag.String("weight", "length", "route weight: length or travel_time")
	geojsonOut  = flag.String("geojson", "", "write the dispatch routes as a GeoJSON FeatureCollection to this file")
)

type report struct {
	Origin      geo.Coordinate           `json:"origin"`
	Disaster    geo.Coordinate           `json:"disaster"`
	Destination geo.Coordinate           `json:"destination"`
	Comparison  dispatch.RouteComparison `json:"comparison"`
	Blocked     closure.BlockResult      `json:"blocked"`
	Dispatch    *usecases.DispatchReport `json:"dispatch"`
}

func main() {
	flag.Parse()
	if err := util.ReadConfig(*configDir); err != nil {
		panic(err)
	}
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), log); err != nil {
		log.Fatal("dispatch example failed", zap.Error(err))
	}
}

func run(ctx context.Context, log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *region != "" {
		cfg.DefaultRegion = *region
	}
	if *radius <= 0 {
		*radius = cfg.BlockRadiusM
	}
	weightKind, err := routing.ParseWeightKind(*weight)
	if err != nil {
		return err
	}

	source := mapdata.NewFileSource(cfg.Regions, cfg.SnapshotDir, log)
	routingEngine := engine.NewEngine(source, log, engine.WithRouteTimeout(cfg.RouteTimeout))
	if err := routingEngine.Load(ctx, cfg.DefaultRegion, cfg.NetworkType); err != nil {
		return err
	}

	gc, closeGeocoder, err := geocoder.New(geocoder.Settings{
		URL:       cfg.GeocoderURL,
		UserAgent: cfg.GeocoderUserAgent,
		City:      cfg.GeocoderCity,
		CacheSize: cfg.GeocoderCacheSize,
		RedisAddr: cfg.GeocoderRedisAddr,
		RedisTTL:  cfg.GeocoderRedisTTL,
	}, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeGeocoder() }()

	var out report
	for _, p := range []struct {
		input string
		dst   *geo.Coordinate
	}{
		{*origin, &out.Origin},
		{*disaster, &out.Disaster},
		{*destination, &out.Destination},
	} {
		coord, err := locate(ctx, gc, p.input)
		if err != nil {
			return err
		}
		*p.dst = coord
	}

	out.Comparison, out.Blocked, err = routingEngine.CompareBlockade(ctx, out.Origin, out.Destination,
		out.Disaster, *radius, weightKind)
	if err != nil {
		return err
	}

	var stations func() *roster.Roster
	if cfg.StationRoster != "" {
		r, err := roster.NewLoader(cfg.StationRoster, log)
		if err != nil {
			return err
		}
		stations = r.Roster
	}

	locator := facility.NewLocator(source, facility.Defaults{
		AvailableTrucks:     cfg.DefaultTrucks,
		AvailableAmbulances: cfg.DefaultAmbulances,
	}, log)
	dispatchService := usecases.NewDispatchService(log, routingEngine, locator, gc, stations, usecases.DispatchSettings{
		SearchRadiusM:   cfg.FacilitySearchRadiusM,
		MaxResults:      cfg.FacilityMaxResults,
		AssumedSpeedKmh: cfg.AssumedSpeedKmh,
		Workers:         cfg.SelectorWorkers,
	})
	out.Dispatch, err = dispatchService.Dispatch(ctx, usecases.DispatchRequest{
		Location:     &out.Disaster,
		Kinds:        []facility.Kind{facility.FireStation, facility.Hospital},
		BlockRadiusM: *radius,
		Weight:       weightKind,
		WithGeoJSON:  *geojsonOut != "",
	})
	if err != nil {
		return err
	}

	if *geojsonOut != "" {
		fc, err := out.Dispatch.GeoJSON.MarshalJSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(*geojsonOut, fc, 0o644); err != nil {
			return err
		}
		out.Dispatch.GeoJSON = nil
		log.Info("dispatch routes written", zap.String("path", *geojsonOut))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// locate accepts "lat,lon" literally and geocodes anything else.
func locate(ctx context.Context, gc geocoder.Geocoder, input string) (geo.Coordinate, error) {
	if coord, ok := parseLatLon(input); ok {
		return coord, nil
	}
	coord, found, err := gc.Geocode(ctx, input)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if !found {
		return geo.Coordinate{}, fmt.Errorf("address %q could not be geocoded", input)
	}
	return coord, nil
}

func parseLatLon(s string) (geo.Coordinate, bool) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	c := geo.NewCoordinate(lat, lon)
	return c, c.Valid()
}
