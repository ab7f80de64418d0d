// Package tokenstore keeps the access token slot of each browser session.
//
// Writers reserve an attempt number with Begin before calling the backend and
// pass it to Set afterwards. Set only applies when no later attempt has been
// started for the same session, so concurrent logins resolve to the attempt
// that started last regardless of which response arrives first.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Attempt identifies a reservation made by Begin. Later attempts compare greater.
type Attempt uint64

// ErrUnknownDriver is returned by New for unsupported driver names.
var ErrUnknownDriver = errors.New("tokenstore: unknown driver")

// ErrEmptySession is returned when an operation receives an empty session id.
var ErrEmptySession = errors.New("tokenstore: session id is required")

// Store holds one access token per session id.
type Store interface {
	// Begin reserves the next attempt number for sid.
	Begin(ctx context.Context, sid string) (Attempt, error)
	// Set writes token for sid unless an attempt newer than attempt was started.
	// It reports whether the write was applied.
	Set(ctx context.Context, sid string, attempt Attempt, token string) (bool, error)
	// Get returns the stored token and whether one was present.
	Get(ctx context.Context, sid string) (string, bool, error)
	// Clear removes the token for sid.
	Clear(ctx context.Context, sid string) error
	Close() error
}

// Driver identifiers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config selects and tunes a store driver.
type Config struct {
	Driver string
	// TTL bounds how long an untouched slot survives. Zero keeps slots forever (memory only).
	TTL   time.Duration
	Redis *RedisConfig
	Now   func() time.Time
}

// RedisConfig captures connection options for the redis driver.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// New creates a store for cfg.Driver (memory when empty).
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(cfg), nil
	case DriverRedis:
		return NewRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}
