// Package cache memoizes rendered plan responses keyed by request content.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/debt-planner/pkg/constants"
)

// Backends
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Cache stores opaque response bodies.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Config selects and tunes a backend.
type Config struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	MaxEntries    int           `yaml:"maxEntries"`
	RedisAddress  string        `yaml:"redisAddress"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`
	// Prefix namespaces keys in shared stores such as Redis.
	Prefix string `yaml:"prefix"`
}

// Normalize applies defaults.
func (c *Config) Normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendNone
	}
	if c.TTL <= 0 {
		c.TTL = constants.DefaultCacheTTLSeconds * time.Second
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = constants.DefaultCacheEntries
	}
	if c.Prefix == "" {
		c.Prefix = "debt-planner:"
	}
}

// Validate reports settings the selected backend cannot run with.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone, BackendMemory:
		return nil
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddress) == "" {
			return fmt.Errorf("redis cache requires redisAddress")
		}
		return nil
	}
	return fmt.Errorf("unknown cache backend %q, expected none, memory or redis", c.Backend)
}

// New builds the configured backend. The none backend caches nothing.
func New(c Config) (Cache, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Backend {
	case BackendMemory:
		return NewMemory(c.MaxEntries, c.TTL), nil
	case BackendRedis:
		return NewRedis(c.RedisAddress, c.RedisPassword, c.RedisDB, c.Prefix), nil
	}
	return Noop{}, nil
}

// Pinger is implemented by backends with a remote connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks that c can reach its store. Backends without a connection
// always succeed.
func Ping(ctx context.Context, c Cache) error {
	p, ok := c.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("cache unreachable: %w", err)
	}
	return nil
}

// Key derives a cache key from a namespace and the request content.
func Key(namespace string, parts ...[]byte) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.Write(p)
		// Separator keeps ("ab","c") and ("a","bc") apart.
		_, _ = d.Write([]byte{0})
	}
	return namespace + ":" + strconv.FormatUint(d.Sum64(), 16)
}

// Noop is a cache that never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Close() error                                             { return nil }
