package config

import (
	"fmt"
	"time"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	"github.com/spf13/viper"
)

type Config struct {
	APIPort        int
	APITimeout     time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	Regions       map[string]string
	DefaultRegion string
	NetworkType   pkg.NetworkType
	SnapshotDir   string
	RouteTimeout  time.Duration

	AssumedSpeedKmh       float64
	FacilitySearchRadiusM float64
	FacilityMaxResults    int
	DefaultTrucks         int
	DefaultAmbulances     int
	BlockRadiusM          float64
	SelectorWorkers       int
	StationRoster         string

	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderCity      string
	GeocoderCacheSize int
	GeocoderRedisAddr string
	GeocoderRedisTTL  time.Duration
}

func setDefaults() {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RATE_LIMIT_RPS", 0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)

	viper.SetDefault("REGIONS", map[string]string{})
	viper.SetDefault("DEFAULT_REGION", "chicago")
	viper.SetDefault("NETWORK_TYPE", string(pkg.NETWORK_DRIVE))
	viper.SetDefault("SNAPSHOT_DIR", "./data/snapshots")
	viper.SetDefault("ROUTE_TIMEOUT", "10s")

	viper.SetDefault("ASSUMED_SPEED_KMH", pkg.DEFAULT_ASSUMED_SPEED_KMH)
	viper.SetDefault("FACILITY_SEARCH_RADIUS_M", pkg.DEFAULT_FACILITY_SEARCH_RADIUS_M)
	viper.SetDefault("FACILITY_MAX_RESULTS", pkg.DEFAULT_FACILITY_MAX_RESULTS)
	viper.SetDefault("DEFAULT_TRUCKS", pkg.DEFAULT_AVAILABLE_TRUCKS)
	viper.SetDefault("DEFAULT_AMBULANCES", pkg.DEFAULT_AVAILABLE_AMBULANCES)
	viper.SetDefault("BLOCK_RADIUS_M", pkg.DEFAULT_BLOCK_RADIUS_M)
	viper.SetDefault("SELECTOR_WORKERS", 4)
	viper.SetDefault("STATION_ROSTER", "")

	viper.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("GEOCODER_USER_AGENT", "navigatorx-dispatch")
	viper.SetDefault("GEOCODER_CITY", "Chicago, IL")
	viper.SetDefault("GEOCODER_CACHE_SIZE", 1024)
	viper.SetDefault("GEOCODER_REDIS_ADDR", "")
	viper.SetDefault("GEOCODER_REDIS_TTL", "168h")
}

// Load collects the viper settings into a Config. util.ReadConfig must run first for the config
// file to be taken into account.
func Load() (Config, error) {
	setDefaults()

	networkType, ok := pkg.ParseNetworkType(viper.GetString("NETWORK_TYPE"))
	if !ok {
		return Config{}, fmt.Errorf("unknown NETWORK_TYPE %q", viper.GetString("NETWORK_TYPE"))
	}

	cfg := Config{
		APIPort:        viper.GetInt("API_PORT"),
		APITimeout:     viper.GetDuration("API_TIMEOUT"),
		RateLimitRPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: viper.GetInt("RATE_LIMIT_BURST"),

		Regions:       viper.GetStringMapString("REGIONS"),
		DefaultRegion: viper.GetString("DEFAULT_REGION"),
		NetworkType:   networkType,
		SnapshotDir:   viper.GetString("SNAPSHOT_DIR"),
		RouteTimeout:  viper.GetDuration("ROUTE_TIMEOUT"),

		AssumedSpeedKmh:       viper.GetFloat64("ASSUMED_SPEED_KMH"),
		FacilitySearchRadiusM: viper.GetFloat64("FACILITY_SEARCH_RADIUS_M"),
		FacilityMaxResults:    viper.GetInt("FACILITY_MAX_RESULTS"),
		DefaultTrucks:         viper.GetInt("DEFAULT_TRUCKS"),
		DefaultAmbulances:     viper.GetInt("DEFAULT_AMBULANCES"),
		BlockRadiusM:          viper.GetFloat64("BLOCK_RADIUS_M"),
		SelectorWorkers:       viper.GetInt("SELECTOR_WORKERS"),
		StationRoster:         viper.GetString("STATION_ROSTER"),

		GeocoderURL:       viper.GetString("GEOCODER_URL"),
		GeocoderUserAgent: viper.GetString("GEOCODER_USER_AGENT"),
		GeocoderCity:      viper.GetString("GEOCODER_CITY"),
		GeocoderCacheSize: viper.GetInt("GEOCODER_CACHE_SIZE"),
		GeocoderRedisAddr: viper.GetString("GEOCODER_REDIS_ADDR"),
		GeocoderRedisTTL:  viper.GetDuration("GEOCODER_REDIS_TTL"),
	}

	if cfg.AssumedSpeedKmh <= 0 {
		return Config{}, fmt.Errorf("ASSUMED_SPEED_KMH must be > 0, got %v", cfg.AssumedSpeedKmh)
	}
	if cfg.FacilitySearchRadiusM <= 0 {
		return Config{}, fmt.Errorf("FACILITY_SEARCH_RADIUS_M must be > 0, got %v", cfg.FacilitySearchRadiusM)
	}
	if cfg.GeocoderCacheSize <= 0 {
		cfg.GeocoderCacheSize = 1024
	}
	if cfg.SelectorWorkers <= 0 {
		cfg.SelectorWorkers = 1
	}
	return cfg, nil
}
