package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile        = ".env"
	defaultAddr           = ":8080"
	defaultEnvironment    = "development"
	defaultAPIBaseURL     = "http://127.0.0.1:8000"
	defaultAPITimeout     = 10 * time.Second
	defaultSessionCookie  = "corncast_session"
	defaultSessionIdle    = 30 * time.Minute
	defaultSessionLife    = 12 * time.Hour
	defaultTokenStore     = "memory"
	defaultRedisPrefix    = "corncast:session:"
	defaultTokenTTL       = 24 * time.Hour
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultHandlerTimeout = 60 * time.Second
	productionEnvironment = "production"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	API         APIConfig
	Session     SessionConfig
	TokenStore  TokenStoreConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	HandlerTimeout time.Duration
}

// APIConfig points at the external yield prediction API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	CookieName  string
	HashKey     []byte
	BlockKey    []byte
	Secure      bool
	IdleTimeout time.Duration
	Lifetime    time.Duration
	// Ephemeral is set when keys were generated for this process only.
	Ephemeral bool
}

// TokenStoreConfig selects where access tokens are kept.
type TokenStoreConfig struct {
	Driver        string
	TTL           time.Duration
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Production reports whether the deployment runs in production mode.
func (c Config) Production() bool {
	return c.Environment == productionEnvironment
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

type lookupFunc func(string) (string, bool)

// Load assembles configuration from defaults, the optional .env file,
// environment variables and explicit overrides (in increasing precedence).
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	var invalid []string
	track := func(field string, err error) {
		if err != nil {
			invalid = append(invalid, field)
		}
	}

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "CORNCAST_ENV", defaultEnvironment)),
		Server: ServerConfig{
			Addr: stringWithDefault(lookup, "CORNCAST_HTTP_ADDR", defaultAddr),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "CORNCAST_API_BASE_URL", defaultAPIBaseURL), "/"),
		},
		Session: SessionConfig{
			CookieName: stringWithDefault(lookup, "CORNCAST_SESSION_COOKIE", defaultSessionCookie),
			HashKey:    []byte(stringWithDefault(lookup, "CORNCAST_SESSION_HASH_KEY", "")),
			BlockKey:   []byte(stringWithDefault(lookup, "CORNCAST_SESSION_BLOCK_KEY", "")),
		},
		TokenStore: TokenStoreConfig{
			Driver:        strings.ToLower(stringWithDefault(lookup, "CORNCAST_TOKEN_STORE", defaultTokenStore)),
			RedisAddr:     stringWithDefault(lookup, "CORNCAST_REDIS_ADDR", ""),
			RedisUsername: stringWithDefault(lookup, "CORNCAST_REDIS_USERNAME", ""),
			RedisPassword: stringWithDefault(lookup, "CORNCAST_REDIS_PASSWORD", ""),
			RedisPrefix:   stringWithDefault(lookup, "CORNCAST_REDIS_PREFIX", defaultRedisPrefix),
		},
	}

	cfg.Server.ReadTimeout, err = durationWithDefault(lookup, "CORNCAST_HTTP_READ_TIMEOUT", defaultReadTimeout)
	track("CORNCAST_HTTP_READ_TIMEOUT", err)
	cfg.Server.WriteTimeout, err = durationWithDefault(lookup, "CORNCAST_HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	track("CORNCAST_HTTP_WRITE_TIMEOUT", err)
	cfg.Server.IdleTimeout, err = durationWithDefault(lookup, "CORNCAST_HTTP_IDLE_TIMEOUT", defaultIdleTimeout)
	track("CORNCAST_HTTP_IDLE_TIMEOUT", err)
	cfg.Server.HandlerTimeout, err = durationWithDefault(lookup, "CORNCAST_HTTP_HANDLER_TIMEOUT", defaultHandlerTimeout)
	track("CORNCAST_HTTP_HANDLER_TIMEOUT", err)
	cfg.API.Timeout, err = durationWithDefault(lookup, "CORNCAST_API_TIMEOUT", defaultAPITimeout)
	track("CORNCAST_API_TIMEOUT", err)
	cfg.Session.IdleTimeout, err = durationWithDefault(lookup, "CORNCAST_SESSION_IDLE_TIMEOUT", defaultSessionIdle)
	track("CORNCAST_SESSION_IDLE_TIMEOUT", err)
	cfg.Session.Lifetime, err = durationWithDefault(lookup, "CORNCAST_SESSION_LIFETIME", defaultSessionLife)
	track("CORNCAST_SESSION_LIFETIME", err)
	cfg.Session.Secure, err = boolWithDefault(lookup, "CORNCAST_SESSION_SECURE", cfg.Environment == productionEnvironment)
	track("CORNCAST_SESSION_SECURE", err)
	cfg.TokenStore.TTL, err = durationWithDefault(lookup, "CORNCAST_TOKEN_TTL", defaultTokenTTL)
	track("CORNCAST_TOKEN_TTL", err)
	cfg.TokenStore.RedisDB, err = intWithDefault(lookup, "CORNCAST_REDIS_DB", 0)
	track("CORNCAST_REDIS_DB", err)

	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, "CORNCAST_API_BASE_URL")
	}

	switch cfg.TokenStore.Driver {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.TokenStore.RedisAddr) == "" {
			invalid = append(invalid, "CORNCAST_REDIS_ADDR")
		}
	default:
		invalid = append(invalid, "CORNCAST_TOKEN_STORE")
	}

	if len(cfg.Session.HashKey) == 0 {
		if cfg.Production() {
			invalid = append(invalid, "CORNCAST_SESSION_HASH_KEY")
		} else {
			cfg.Session.HashKey = randomKey(32)
			cfg.Session.BlockKey = randomKey(32)
			cfg.Session.Ephemeral = true
		}
	}
	if n := len(cfg.Session.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		invalid = append(invalid, "CORNCAST_SESSION_BLOCK_KEY")
	}

	if len(invalid) > 0 {
		return Config{}, &ValidationError{fields: invalid}
	}
	return cfg, nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup lookupFunc, key, fallback string) string {
	if value, ok := lookup(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func durationWithDefault(lookup lookupFunc, key string, fallback time.Duration) (time.Duration, error) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("config: %s: invalid duration %q", key, value)
	}
	return d, nil
}

func boolWithDefault(lookup lookupFunc, key string, fallback bool) (bool, error) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func intWithDefault(lookup lookupFunc, key string, fallback int) (int, error) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func randomKey(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Errorf("config: generate key: %w", err))
	}
	return b
}
