// Package preference binds a single JSON-encoded value to a key in a Store.
package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Store is a string key/value store holding JSON text.
//
// Implementations MUST be safe for concurrent use.
type Store interface {
	// Get returns the stored text for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Preference holds a value of type T persisted under a fixed key.
// Every Set writes through to the Store; last writer wins.
type Preference[T any] struct {
	store  Store
	key    string
	logger *zap.Logger

	mu    sync.RWMutex
	value T
}

// New reads key from store and returns a Preference holding the decoded value,
// or fallback when the key is absent or its JSON cannot be decoded into T.
// The held value is written back immediately.
//
// Precondition: store and logger must be non-nil; key must be non-empty.
// Postcondition: Returns a Preference whose value is persisted under key, or a
// non-nil error if the store could not be read or written.
func New[T any](ctx context.Context, store Store, key string, fallback T, logger *zap.Logger) (*Preference[T], error) {
	p := &Preference[T]{store: store, key: key, logger: logger, value: fallback}

	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading preference %q: %w", key, err)
	}
	if ok {
		var decoded T
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			logger.Warn("ignoring undecodable preference",
				zap.String("key", key),
				zap.Error(err),
			)
		} else {
			p.value = decoded
		}
	}

	if err := p.write(ctx, p.value); err != nil {
		return nil, err
	}
	return p, nil
}

// Key returns the storage key.
func (p *Preference[T]) Key() string {
	return p.key
}

// Get returns the held value.
func (p *Preference[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Set replaces the held value and writes its JSON encoding to the store.
//
// Postcondition: Get() returns v; the store holds json(v) under Key() unless an error is returned.
func (p *Preference[T]) Set(ctx context.Context, v T) error {
	p.mu.Lock()
	p.value = v
	p.mu.Unlock()
	return p.write(ctx, v)
}

func (p *Preference[T]) write(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding preference %q: %w", p.key, err)
	}
	if err := p.store.Set(ctx, p.key, string(data)); err != nil {
		return fmt.Errorf("writing preference %q: %w", p.key, err)
	}
	p.logger.Debug("preference written",
		zap.String("key", p.key),
		zap.Int("bytes", len(data)),
	)
	return nil
}
