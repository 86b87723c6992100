// Package cache implements the Cache Adapter (C9, §4.9): a minimal
// key/value interface with TTL, backed by default on an in-process,
// cost-aware concurrent cache (dgraph-io/ristretto), the way the teacher
// wraps the same library in its own cache façade. A remote implementation
// satisfying the same interface may be substituted without changing
// callers — nothing here assumes strong consistency, and callers must be
// able to fall back to the session store on a miss (§4.9).
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/slotmachine/fairness-engine/internal/apperrors"
)

// Cache is the external interface of §4.9/§6: get, set with optional TTL,
// delete, atomic increment, and an explicit TTL-refresh via Expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// RistrettoCache is the default Cache implementation. Ristretto already
// evicts TTL-expired entries internally; this wrapper additionally checks
// expiry on every read so a caller never observes a stale value even in
// the window before ristretto's own janitor runs (lazy expiry, §4.9).
type RistrettoCache struct {
	mu    sync.Mutex // guards Incr's read-modify-write; Get/Set/Delete go straight to ristretto
	cache *ristretto.Cache[string, entry]
}

// NewRistrettoCache constructs a RistrettoCache sized for numCounters/
// maxCost the way the teacher's internal/pkg/cache.NewCache does.
func NewRistrettoCache() (*RistrettoCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, entry]{
		NumCounters: 1e7,
		MaxCost:     1 << 28,
		BufferItems: 64,
	})
	if err != nil {
		return nil, apperrors.NewInternal("failed to construct cache", err)
	}
	return &RistrettoCache{cache: c}, nil
}

func (c *RistrettoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	if v.expired(time.Now()) {
		c.cache.Del(key)
		return nil, false, nil
	}
	return v.value, true, nil
}

func (c *RistrettoCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	var ok bool
	if ttl > 0 {
		ok = c.cache.SetWithTTL(key, e, int64(len(value))+1, ttl)
	} else {
		ok = c.cache.Set(key, e, int64(len(value))+1)
	}
	if !ok {
		return apperrors.NewInternal(fmt.Sprintf("cache: set rejected for key %q", key), nil)
	}
	c.cache.Wait()
	return nil
}

func (c *RistrettoCache) Delete(ctx context.Context, key string) error {
	c.cache.Del(key)
	return nil
}

// Incr treats the stored value as a decimal-encoded int64, incrementing it
// by one and persisting the result without a TTL change. A missing key
// starts at zero.
func (c *RistrettoCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	var expiresAt time.Time
	if v, ok := c.cache.Get(key); ok && !v.expired(time.Now()) {
		if _, err := fmt.Sscanf(string(v.value), "%d", &n); err != nil {
			return 0, apperrors.NewInternal(fmt.Sprintf("cache: value at key %q is not an integer", key), err)
		}
		expiresAt = v.expiresAt
	}
	n++

	encoded := []byte(fmt.Sprintf("%d", n))
	e := entry{value: encoded, expiresAt: expiresAt}
	var ok bool
	if remaining := time.Until(expiresAt); !expiresAt.IsZero() && remaining > 0 {
		ok = c.cache.SetWithTTL(key, e, int64(len(encoded))+1, remaining)
	} else {
		ok = c.cache.Set(key, e, int64(len(encoded))+1)
	}
	if !ok {
		return 0, apperrors.NewInternal(fmt.Sprintf("cache: incr set rejected for key %q", key), nil)
	}
	c.cache.Wait()
	return n, nil
}

func (c *RistrettoCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	v, ok := c.cache.Get(key)
	if !ok || v.expired(time.Now()) {
		return apperrors.NewNotFound(fmt.Sprintf("cache: key %q not found", key))
	}
	return c.Set(ctx, key, v.value, ttl)
}

// Close releases ristretto's background goroutines.
func (c *RistrettoCache) Close() {
	c.cache.Close()
}

// Prefixed returns a Cache that transparently prefixes every key with
// prefix + ":", the pseudo-hash-subspace mechanism of §4.9, grounded on the
// teacher's AppName:Env:key key-prefixing convention.
func Prefixed(base Cache, prefix string) Cache {
	return &prefixedCache{base: base, prefix: prefix}
}

type prefixedCache struct {
	base   Cache
	prefix string
}

func (p *prefixedCache) key(k string) string {
	return p.prefix + ":" + k
}

func (p *prefixedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.base.Get(ctx, p.key(key))
}

func (p *prefixedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.base.Set(ctx, p.key(key), value, ttl)
}

func (p *prefixedCache) Delete(ctx context.Context, key string) error {
	return p.base.Delete(ctx, p.key(key))
}

func (p *prefixedCache) Incr(ctx context.Context, key string) (int64, error) {
	return p.base.Incr(ctx, p.key(key))
}

func (p *prefixedCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return p.base.Expire(ctx, p.key(key), ttl)
}
