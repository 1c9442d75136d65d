package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"cardgenius/internal/core"
	applog "cardgenius/internal/log"
)

type fakeStore struct {
	values map[string]string
	gets   int
	puts   int
	dels   int
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, name string) (string, error) {
	f.gets++
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[name]
	if !ok {
		return "", core.ErrSecretNotFound
	}
	return v, nil
}

func (f *fakeStore) Put(_ context.Context, name, value, _ string) error {
	f.puts++
	if f.err != nil {
		return f.err
	}
	f.values[name] = value
	return nil
}

func (f *fakeStore) Delete(_ context.Context, name string) error {
	f.dels++
	if f.err != nil {
		return f.err
	}
	delete(f.values, name)
	return nil
}

func testLogger() *applog.Logger {
	return applog.New(applog.DefaultConfig())
}

func TestGetCachesWithinTTL(t *testing.T) {
	store := newFakeStore()
	store.values["llm_key"] = "sk-123"

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := New(store, testLogger(), WithClock(func() time.Time { return now }))

	if got := cache.Get(context.Background(), "llm_key"); got != "sk-123" {
		t.Fatalf("Get = %q, want sk-123", got)
	}
	if got := cache.Get(context.Background(), "llm_key"); got != "sk-123" {
		t.Fatalf("second Get = %q, want sk-123", got)
	}
	if store.gets != 1 {
		t.Errorf("store hit %d times within TTL, want 1", store.gets)
	}
}

func TestGetRefetchesAfterTTL(t *testing.T) {
	store := newFakeStore()
	store.values["llm_key"] = "sk-123"

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := New(store, testLogger(), WithClock(func() time.Time { return now }))

	cache.Get(context.Background(), "llm_key")
	now = now.Add(DefaultTTL + time.Second)
	cache.Get(context.Background(), "llm_key")

	if store.gets != 2 {
		t.Errorf("store hit %d times across TTL boundary, want 2", store.gets)
	}
}

func TestGetNeverFails(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")

	cache := New(store, testLogger())

	if got := cache.Get(context.Background(), "llm_key"); got != "" {
		t.Errorf("Get on store failure = %q, want empty string", got)
	}
}

func TestEnvOverrideWins(t *testing.T) {
	store := newFakeStore()
	store.values["llm_key"] = "remote"

	cache := New(store, testLogger(), WithEnvOverride("llm_key", "from-env"))

	if got := cache.Get(context.Background(), "llm_key"); got != "from-env" {
		t.Errorf("Get = %q, want env override", got)
	}
	if store.gets != 0 {
		t.Errorf("store hit %d times despite env override, want 0", store.gets)
	}
}

func TestSetServesNewValueWithoutRefetch(t *testing.T) {
	store := newFakeStore()
	store.values["llm_key"] = "old"

	cache := New(store, testLogger())
	cache.Get(context.Background(), "llm_key")

	if err := cache.Set(context.Background(), "llm_key", "new", "rotated"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if store.puts != 1 {
		t.Errorf("store puts = %d, want 1", store.puts)
	}
	if got := cache.Get(context.Background(), "llm_key"); got != "new" {
		t.Errorf("Get after Set = %q, want new", got)
	}
	if store.gets != 1 {
		t.Errorf("store hit %d times, want 1 (rotation must not force a refetch)", store.gets)
	}
}

func TestDeleteInvalidates(t *testing.T) {
	store := newFakeStore()
	store.values["llm_key"] = "v"

	cache := New(store, testLogger())
	cache.Get(context.Background(), "llm_key")

	if err := cache.Delete(context.Background(), "llm_key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := cache.Get(context.Background(), "llm_key"); got != "" {
		t.Errorf("Get after Delete = %q, want empty", got)
	}
}

func TestInvalidateAll(t *testing.T) {
	store := newFakeStore()
	store.values["a"] = "1"
	store.values["b"] = "2"

	cache := New(store, testLogger())
	cache.Get(context.Background(), "a")
	cache.Get(context.Background(), "b")
	cache.Invalidate("")
	cache.Get(context.Background(), "a")
	cache.Get(context.Background(), "b")

	if store.gets != 4 {
		t.Errorf("store hit %d times, want 4 after full invalidation", store.gets)
	}
}

func TestNoStoreConfigured(t *testing.T) {
	cache := New(nil, testLogger(), WithEnvOverride("llm_key", "env-only"))

	if got := cache.Get(context.Background(), "llm_key"); got != "env-only" {
		t.Errorf("Get = %q, want env-only", got)
	}
	if got := cache.Get(context.Background(), "other"); got != "" {
		t.Errorf("Get(other) = %q, want empty", got)
	}
	if err := cache.Set(context.Background(), "x", "y", ""); err == nil {
		t.Error("Set without store should error")
	}
}
