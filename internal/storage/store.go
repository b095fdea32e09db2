// Package storage keeps the artifacts of the latest analysis of a session.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("artifact not found")

// Store is a key-value store with per-entry expiry.
type Store interface {
	// PutMany writes every entry or none of them.
	PutMany(ctx context.Context, entries map[string][]byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
