package geocoder

import (
	"context"
	"strings"
	"time"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/metrics"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Geocoder resolves a free text address. ok is false when the address is unknown, err is only
// set when the geocoding service could not answer.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (coord geo.Coordinate, ok bool, err error)
}

// upper bound of one shared remote lookup, the throttle wait plus the nominatim client timeout
const lookupTimeout = 15 * time.Second

type lookup struct {
	coord geo.Coordinate
	ok    bool
}

// CachedGeocoder memoizes resolved addresses. Unknown addresses are not cached so a later call
// asks the service again. Concurrent lookups of one address share a single remote call.
type CachedGeocoder struct {
	inner Geocoder
	cache Cache
	group singleflight.Group
	log   *zap.Logger
}

func NewCachedGeocoder(inner Geocoder, cache Cache, log *zap.Logger) *CachedGeocoder {
	return &CachedGeocoder{
		inner: inner,
		cache: cache,
		log:   log,
	}
}

func cacheKey(address string) string {
	return strings.TrimSpace(address)
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (geo.Coordinate, bool, error) {
	key := cacheKey(address)

	coord, hit, err := g.cache.Get(ctx, key)
	if err != nil {
		g.log.Warn("geocode cache read failed", zap.String("address", key), zap.Error(err))
	} else if hit {
		metrics.GeocodeRequests.WithLabelValues("cache", "hit").Inc()
		return coord, true, nil
	}

	// the shared lookup outlives any single caller, each caller only stops waiting on its own ctx
	ch := g.group.DoChan(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		coord, ok, err := g.inner.Geocode(lctx, key)
		if err != nil {
			return lookup{}, err
		}
		if ok {
			if err := g.cache.Set(lctx, key, coord); err != nil {
				g.log.Warn("geocode cache write failed", zap.String("address", key), zap.Error(err))
			}
		}
		return lookup{coord: coord, ok: ok}, nil
	})

	var v interface{}
	select {
	case <-ctx.Done():
		metrics.GeocodeRequests.WithLabelValues("remote", "cancelled").Inc()
		return geo.Coordinate{}, false, util.WrapErrorf(ctx.Err(), util.ErrTimeout, "geocode %q", key)
	case r := <-ch:
		v, err = r.Val, r.Err
	}
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("remote", "error").Inc()
		return geo.Coordinate{}, false, err
	}

	res := v.(lookup)
	if res.ok {
		metrics.GeocodeRequests.WithLabelValues("remote", "found").Inc()
	} else {
		metrics.GeocodeRequests.WithLabelValues("remote", "not_found").Inc()
	}
	return res.coord, res.ok, nil
}
