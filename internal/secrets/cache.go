package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	applog "cardgenius/internal/log"
)

// DefaultTTL bounds how long a fetched secret is served from memory.
const DefaultTTL = 5 * time.Minute

type cached struct {
	value     string
	expiresAt time.Time
}

// Cache is a read-through, per-name TTL cache over a Store. Reads never
// fail: a missing or unreachable secret resolves to the empty string and
// the caller degrades to reduced functionality. Set writes through to the
// store and caches the new value; Delete invalidates the entry.
//
// No request coalescing: concurrent reads of a cold name may each hit the
// store. The fetch is idempotent and low-frequency, so last-writer-wins
// is fine.
type Cache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *applog.Logger

	mu      sync.Mutex
	entries map[string]cached
	env     map[string]string
}

type Option func(*Cache)

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithEnvOverride registers a build-time value for a secret name. The
// override is authoritative over the remote store but still ages out of
// memory on the same TTL, keeping a single code path.
func WithEnvOverride(name, value string) Option {
	return func(c *Cache) {
		if value != "" {
			c.env[name] = value
		}
	}
}

func New(store Store, logger *applog.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logger.WithComponent(applog.ComponentSecrets),
		entries: make(map[string]cached),
		env:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get resolves a secret by name: fresh cache entry, then env override,
// then the remote store. Failures are logged and collapse to "".
func (c *Cache) Get(ctx context.Context, name string) string {
	now := c.now()

	c.mu.Lock()
	if e, ok := c.entries[name]; ok && now.Before(e.expiresAt) {
		c.mu.Unlock()
		return e.value
	}
	c.mu.Unlock()

	if v, ok := c.env[name]; ok {
		c.put(name, v, now)
		return v
	}

	if c.store == nil {
		return ""
	}

	v, err := c.store.Get(ctx, name)
	if err != nil {
		c.logger.WarnContext(ctx, "Secret fetch failed, continuing without it",
			applog.FieldSecretName, name, applog.FieldError, err.Error())
		return ""
	}
	c.put(name, v, now)
	return v
}

// Set writes the secret through to the store and caches the new value
// with a fresh TTL, so a read right after a rotation serves the new
// value without another fetch.
func (c *Cache) Set(ctx context.Context, name, value, description string) error {
	if c.store == nil {
		return fmt.Errorf("set secret %q: no secrets store configured", name)
	}
	if err := c.store.Put(ctx, name, value, description); err != nil {
		return err
	}
	c.put(name, value, c.now())
	return nil
}

// Delete soft-deletes the secret remotely and drops the cached entry.
func (c *Cache) Delete(ctx context.Context, name string) error {
	if c.store == nil {
		return fmt.Errorf("delete secret %q: no secrets store configured", name)
	}
	if err := c.store.Delete(ctx, name); err != nil {
		return err
	}
	c.Invalidate(name)
	return nil
}

// Invalidate drops one cached entry, or every entry when name is empty.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" {
		c.entries = make(map[string]cached)
		return
	}
	delete(c.entries, name)
}

func (c *Cache) put(name, value string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = cached{value: value, expiresAt: now.Add(c.ttl)}
}
