package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/redis/go-redis/v9"
)

// Cache stores resolved addresses. Misses are (zero, false, nil).
type Cache interface {
	Get(ctx context.Context, address string) (geo.Coordinate, bool, error)
	Set(ctx context.Context, address string, coord geo.Coordinate) error
}

type LRUCache struct {
	lru *lru.Cache[string, geo.Coordinate]
}

func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New[string, geo.Coordinate](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{lru: c}, nil
}

func (c *LRUCache) Get(_ context.Context, address string) (geo.Coordinate, bool, error) {
	coord, ok := c.lru.Get(address)
	return coord, ok, nil
}

func (c *LRUCache) Set(_ context.Context, address string, coord geo.Coordinate) error {
	c.lru.Add(address, coord)
	return nil
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}

// RedisCache shares resolved addresses between server instances.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "geocode:",
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, address string) (geo.Coordinate, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+address).Bytes()
	if errors.Is(err, redis.Nil) {
		return geo.Coordinate{}, false, nil
	} else if err != nil {
		return geo.Coordinate{}, false, err
	}

	var coord geo.Coordinate
	if err := json.Unmarshal(data, &coord); err != nil {
		return geo.Coordinate{}, false, err
	}
	return coord, true, nil
}

func (c *RedisCache) Set(ctx context.Context, address string, coord geo.Coordinate) error {
	data, err := json.Marshal(coord)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+address, data, c.ttl).Err()
}
