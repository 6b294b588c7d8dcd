package cache

import (
	"context"
	"time"
)

// Store is the cache consumed by the board read side. Values are JSON encoded.
type Store interface {
	// Get decodes the value stored at key into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	// Set stores v at key for ttl.
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

type nopStore struct{}

// Nop returns a Store that never holds anything, used when Redis is disabled.
func Nop() Store { return nopStore{} }

func (nopStore) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (nopStore) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (nopStore) Delete(context.Context, ...string) error { return nil }
