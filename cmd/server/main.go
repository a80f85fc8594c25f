package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/config"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geocoder"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/http"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/http/router"
	http_server "github.com/lintang-b-s/navigatorx-dispatch/pkg/http/server"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/http/usecases"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/logger"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/mapdata"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/roster"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
)

var (
	configDir = flag.String("config_dir", "./data/", "directory holding config.yaml")
	region    = flag.String("region", "", "region to load at startup, overrides DEFAULT_REGION")
)

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

	if err := run(log); err != nil {
		log.Fatal("dispatch server stopped with error", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *region != "" {
		cfg.DefaultRegion = *region
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := mapdata.NewFileSource(cfg.Regions, cfg.SnapshotDir, log)
	routingEngine := engine.NewEngine(source, log, engine.WithRouteTimeout(cfg.RouteTimeout))
	// the API still starts without a network, requests answer 503 until a reload succeeds
	if err := routingEngine.Load(ctx, cfg.DefaultRegion, cfg.NetworkType); err != nil {
		log.Error("initial road network load failed", zap.String("region", cfg.DefaultRegion), zap.Error(err))
	}

	locator := facility.NewLocator(source, facility.Defaults{
		AvailableTrucks:     cfg.DefaultTrucks,
		AvailableAmbulances: cfg.DefaultAmbulances,
	}, log)

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

	var stations func() *roster.Roster
	if cfg.StationRoster != "" {
		loader, err := roster.NewLoader(cfg.StationRoster, log)
		if err != nil {
			return err
		}
		stopWatch, err := loader.Watch()
		if err != nil {
			return err
		}
		defer stopWatch()
		stations = loader.Roster
	}

	routingService := usecases.NewRoutingService(log, routingEngine, cfg.BlockRadiusM)
	dispatchService := usecases.NewDispatchService(log, routingEngine, locator, gc, stations, usecases.DispatchSettings{
		SearchRadiusM:   cfg.FacilitySearchRadiusM,
		MaxResults:      cfg.FacilityMaxResults,
		AssumedSpeedKmh: cfg.AssumedSpeedKmh,
		Workers:         cfg.SelectorWorkers,
	})

	api, err := http.NewServer(log).Use(ctx,
		http_server.Config{Port: cfg.APIPort, Timeout: cfg.APITimeout},
		routingService, dispatchService,
		router.Options{
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			Ready:          routingEngine.Loaded,
		})
	if err != nil {
		return err
	}

	err = api.Wait()
	log.Info("Navigatorx Dispatch Server Stopped")
	return err
}
