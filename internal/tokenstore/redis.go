package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "corncast:session:"
	defaultRedisTTL    = 24 * time.Hour
)

// setScript applies a token write only when no newer attempt was started.
var setScript = redis.NewScript(`
local started = tonumber(redis.call('HGET', KEYS[1], 'started') or '0')
local written = tonumber(redis.call('HGET', KEYS[1], 'written') or '0')
local attempt = tonumber(ARGV[1])
if attempt < started or attempt < written then
  return 0
end
redis.call('HSET', KEYS[1], 'token', ARGV[2], 'written', ARGV[1])
if attempt > started then
  redis.call('HSET', KEYS[1], 'started', ARGV[1])
end
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// clearScript drops the token and invalidates attempts still in flight.
var clearScript = redis.NewScript(`
local started = redis.call('HINCRBY', KEYS[1], 'started', 1)
redis.call('HSET', KEYS[1], 'written', started)
redis.call('HDEL', KEYS[1], 'token')
redis.call('PEXPIRE', KEYS[1], ARGV[1])
return started
`)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis constructs a redis-backed store and verifies connectivity.
func NewRedis(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, errors.New("tokenstore: redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("tokenstore: redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tokenstore: redis ping failed: %w", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &redisStore{client: client, ttl: ttl, prefix: prefix}, nil
}

func (s *redisStore) key(sid string) string {
	return s.prefix + sid
}

func (s *redisStore) Begin(ctx context.Context, sid string) (Attempt, error) {
	if sid == "" {
		return 0, ErrEmptySession
	}
	key := s.key(sid)
	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, "started", 1)
	pipe.PExpire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("tokenstore: begin attempt: %w", err)
	}
	return Attempt(incr.Val()), nil
}

func (s *redisStore) Set(ctx context.Context, sid string, attempt Attempt, token string) (bool, error) {
	if sid == "" {
		return false, ErrEmptySession
	}
	applied, err := setScript.Run(ctx, s.client, []string{s.key(sid)}, uint64(attempt), token, s.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("tokenstore: set token: %w", err)
	}
	return applied == 1, nil
}

func (s *redisStore) Get(ctx context.Context, sid string) (string, bool, error) {
	if sid == "" {
		return "", false, nil
	}
	token, err := s.client.HGet(ctx, s.key(sid), "token").Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("tokenstore: get token: %w", err)
	}
	return token, true, nil
}

func (s *redisStore) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := clearScript.Run(ctx, s.client, []string{s.key(sid)}, s.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("tokenstore: clear token: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
