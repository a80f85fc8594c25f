package geocoder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
)

const DEFAULT_NOMINATIM_URL = "https://nominatim.openstreetmap.org"

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim geocodes free text addresses with the nominatim search API. The configured city is
// appended to every address.
type Nominatim struct {
	baseURL   string
	userAgent string
	city      string
	client    *http.Client
	throttle  *Throttle
	log       *zap.Logger
}

func NewNominatim(baseURL, userAgent, city string, throttle *Throttle, log *zap.Logger) *Nominatim {
	if baseURL == "" {
		baseURL = DEFAULT_NOMINATIM_URL
	}
	if throttle == nil {
		throttle = NewThrottle(time.Second, RealClock())
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		city:      city,
		client:    &http.Client{Timeout: 10 * time.Second},
		throttle:  throttle,
		log:       log,
	}
}

func (n *Nominatim) query(address string) string {
	address = strings.TrimSpace(address)
	if n.city == "" {
		return address
	}
	return address + ", " + n.city
}

func (n *Nominatim) Geocode(ctx context.Context, address string) (geo.Coordinate, bool, error) {
	var (
		places []nominatimPlace
		q      = n.query(address)
	)
	err := n.throttle.Do(ctx, func(ctx context.Context) error {
		params := url.Values{}
		params.Set("q", q)
		params.Set("format", "json")
		params.Set("limit", "1")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
		if err != nil {
			return util.WrapErrorf(err, util.ErrGeocodeFailure, "build geocode request")
		}
		req.Header.Set("User-Agent", n.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return util.WrapErrorf(err, util.ErrGeocodeFailure, "geocode %q", q)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return util.WrapErrorf(nil, util.ErrGeocodeFailure, "geocode %q: status %d", q, resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
			return util.WrapErrorf(err, util.ErrGeocodeFailure, "decode geocode response")
		}
		return nil
	})
	if err != nil {
		return geo.Coordinate{}, false, err
	}

	if len(places) == 0 {
		n.log.Warn("address not found", zap.String("query", q))
		return geo.Coordinate{}, false, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return geo.Coordinate{}, false, util.WrapErrorf(err, util.ErrGeocodeFailure, "invalid latitude %q", places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return geo.Coordinate{}, false, util.WrapErrorf(err, util.ErrGeocodeFailure, "invalid longitude %q", places[0].Lon)
	}

	n.log.Debug("geocoded address", zap.String("query", q), zap.String("place", places[0].DisplayName),
		zap.Float64("lat", lat), zap.Float64("lon", lon))
	return geo.NewCoordinate(lat, lon), true, nil
}
