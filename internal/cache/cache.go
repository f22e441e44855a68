// Package cache memoizes compiled artifacts by build key.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/compiler"
)

// ErrMiss is returned by Get when nothing is cached under the key.
var ErrMiss = errors.New("cache: miss")

// DefaultTTL bounds how long an artifact stays cached.
const DefaultTTL = 24 * time.Hour

// Cache stores artifacts keyed by compiler.Artifact.Key.
type Cache interface {
	Get(ctx context.Context, key string) (*compiler.Artifact, error)
	Set(ctx context.Context, a *compiler.Artifact) error
}

// Config holds the Redis connection settings.
type Config struct {
	Address  string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Redis is a Cache backed by a Redis server.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to the server described by cfg.
func NewRedis(cfg Config) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return Wrap(rdb, cfg.Prefix, cfg.TTL)
}

// Wrap uses an existing client. An empty prefix defaults to "formc" and a
// zero ttl to DefaultTTL.
func Wrap(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "formc"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Ping tests the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) redisKey(key string) string {
	return r.prefix + ":artifact:" + key
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) (*compiler.Artifact, error) {
	raw, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return decode(raw)
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, a *compiler.Artifact) error {
	raw, err := encode(a)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.redisKey(a.Key), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", a.Key, err)
	}
	return nil
}

type entry struct {
	Hash     string `json:"hash"`
	Key      string `json:"key"`
	Markup   []byte `json:"markup"`
	Style    []byte `json:"style"`
	Script   []byte `json:"script"`
	Document []byte `json:"document"`
}

func encode(a *compiler.Artifact) ([]byte, error) {
	raw, err := json.Marshal(entry{Hash: a.Hash, Key: a.Key, Markup: a.Markup, Style: a.Style, Script: a.Script, Document: a.Document})
	if err != nil {
		return nil, fmt.Errorf("cache encode: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) (*compiler.Artifact, error) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &compiler.Artifact{Hash: e.Hash, Key: e.Key, Markup: e.Markup, Style: e.Style, Script: e.Script, Document: e.Document}, nil
}

// Memory is an in-process Cache used when no Redis address is configured.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*compiler.Artifact
}

// NewMemory returns an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{entries: map[string]*compiler.Artifact{}}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (*compiler.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return a, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, a *compiler.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[a.Key] = a
	return nil
}
