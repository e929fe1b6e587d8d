// Package cache holds short-lived copies of read-heavy query results.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

// Cache is a byte-oriented key/value store with counters used as generation keys.
// Writers invalidate a family of keys by bumping its counter; readers fold the
// current counter value into the keys they look up.
type Cache interface {
	// Get returns ErrMiss when key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Version returns the counter stored at key, 0 when it was never bumped.
	Version(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) error
	Close() error
}

type noop struct{}

// NewNoop returns a Cache that stores nothing.
func NewNoop() Cache { return noop{} }

func (noop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }
func (noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (noop) Version(context.Context, string) (int64, error) { return 0, nil }
func (noop) Bump(context.Context, string) error { return nil }
func (noop) Close() error { return nil }
