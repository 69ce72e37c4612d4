// apps/versus-server/internal/store/store.go
//
// Persistence for the game server.
//
// Two concerns live here:
//   - KV: an opaque key → JSON blob store used for series and profiles.
//     Drivers: memory (default), sqlite, redis, postgres (STORE_DRIVER).
//   - Games: live human game sessions, always in memory.
//
// Missing keys are reported as ErrNotFound, which callers treat as
// "nothing saved yet", never as a failure.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// KV is a string-keyed blob store.
type KV interface {
	// Load returns the stored value or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save creates or replaces key.
	Save(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Options carries driver-specific settings.
type Options struct {
	SQLitePath  string
	RedisURL    string
	PostgresURL string
}

// Open returns the KV driver named by driver.
func Open(ctx context.Context, driver string, o Options) (KV, error) {
	switch driver {
	case "", "memory":
		return NewMemoryKV(), nil
	case "sqlite":
		return OpenSQLite(ctx, o.SQLitePath)
	case "redis":
		return OpenRedis(ctx, o.RedisURL)
	case "postgres":
		return OpenPostgres(ctx, o.PostgresURL)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}

// LoadJSON decodes key into v. found is false (with a nil error) when the
// key does not exist.
func LoadJSON(ctx context.Context, kv KV, key string, v any) (found bool, err error) {
	b, err := kv.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v under key.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return kv.Save(ctx, key, b)
}
