// Package kvstore persists JSON-encoded values under string keys. Backends
// implement Store; Adapter adds per-key locking and the fallback-on-failure
// read semantics every domain module relies on.
package kvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	json "github.com/goccy/go-json"
)

// ErrNotFound is returned by Store.Get for absent keys.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a key-value backend. A single Set is atomic: readers observe the
// previous or the new value, never a mix.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// InstanceID identifies the running backend instance. It changes when a
	// volatile backend restarts and lost its data.
	InstanceID(ctx context.Context) (string, error)
}

// Adapter is the typed entry point used by domain modules.
type Adapter struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAdapter wraps store.
func NewAdapter(store Store) *Adapter {
	return &Adapter{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Store returns the wrapped backend.
func (a *Adapter) Store() Store {
	return a.store
}

func (a *Adapter) lockFor(key string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.locks[key]
	if !ok {
		m = &sync.Mutex{}
		a.locks[key] = m
	}
	return m
}

// Lock acquires the locks of keys in sorted order and returns the release
// func. Every read-modify-write of a key must hold its lock.
func (a *Adapter) Lock(keys ...string) (unlock func()) {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for _, k := range sorted {
		m := a.lockFor(k)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

var jsonNull = []byte("null")

func decodable(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, jsonNull)
}

// Load returns the value stored under key, or fallback when the key is
// absent, empty, null or undecodable. A backend failure is returned as an
// error so read-modify-write callers never write back over data they could
// not see.
func Load[T any](ctx context.Context, a *Adapter, key string, fallback T) (T, error) {
	raw, err := a.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("kvstore: read %s: %w", key, err)
	}
	if !decodable(raw) {
		return fallback, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Warn("kvstore value is malformed, using fallback", "key", key, "err", err)
		return fallback, nil
	}
	return v, nil
}

// Read is Load for lock-free readers: a backend failure is logged and
// yields fallback.
func Read[T any](ctx context.Context, a *Adapter, key string, fallback T) T {
	v, err := Load(ctx, a, key, fallback)
	if err != nil {
		slog.Warn("kvstore read failed, using fallback", "key", key, "err", err)
		return fallback
	}
	return v
}

// Write encodes v and stores it under key, replacing any previous value.
func Write(ctx context.Context, a *Adapter, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kvstore: encode %s: %w", key, err)
	}
	if err := a.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("kvstore: write %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func Remove(ctx context.Context, a *Adapter, key string) error {
	if err := a.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("kvstore: delete %s: %w", key, err)
	}
	return nil
}

// Present reports whether key holds a decodable, non-null value.
func Present(ctx context.Context, a *Adapter, key string) bool {
	ok, err := Exists(ctx, a, key)
	return err == nil && ok
}

// Exists is Present with backend failures reported instead of read as
// absence.
func Exists(ctx context.Context, a *Adapter, key string) (bool, error) {
	raw, err := a.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kvstore: read %s: %w", key, err)
	}
	return decodable(raw) && json.Valid(raw), nil
}

// SeedIfAbsent writes value under key unless a usable value is already there.
// It reports whether a write happened. A failed read aborts without writing.
func SeedIfAbsent(ctx context.Context, a *Adapter, key string, value any) (bool, error) {
	unlock := a.Lock(key)
	defer unlock()

	ok, err := Exists(ctx, a, key)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := Write(ctx, a, key, value); err != nil {
		return false, err
	}
	return true, nil
}
