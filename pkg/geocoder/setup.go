package geocoder

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Settings struct {
	URL       string
	UserAgent string
	City      string
	CacheSize int
	RedisAddr string
	RedisTTL  time.Duration
}

// New builds a throttled nominatim client behind a cache. A non empty RedisAddr selects the redis
// cache, otherwise an in process LRU is used. closeFn releases the redis client.
func New(s Settings, log *zap.Logger) (g *CachedGeocoder, closeFn func() error, err error) {
	inner := NewNominatim(s.URL, s.UserAgent, s.City, NewThrottle(time.Second, RealClock()), log)

	if s.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: s.RedisAddr})
		log.Info("geocode cache backed by redis", zap.String("addr", s.RedisAddr))
		return NewCachedGeocoder(inner, NewRedisCache(client, s.RedisTTL), log), client.Close, nil
	}

	cache, err := NewLRUCache(s.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	return NewCachedGeocoder(inner, cache, log), func() error { return nil }, nil
}
