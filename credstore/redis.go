package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goAuthClient/session"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport failures from the Redis backend.
var ErrRedisUnavailable = errors.New("redis unavailable")

// RedisStore persists credentials in Redis.
type RedisStore struct {
	redis redis.UniversalClient
	keys  KeyBuilder
	ttl   time.Duration
	now   func() time.Time
}

// NewRedisStore returns a store writing under prefix. A positive ttl expires all three keys
// together; zero keeps them until cleared.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redis: client,
		keys:  PrefixKeys{Prefix: prefix},
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *RedisStore) Load(ctx context.Context) (Record, error) {
	values, err := s.redis.MGet(ctx,
		s.keys.Key(KeyAccessToken),
		s.keys.Key(KeyRefreshToken),
		s.keys.Key(KeyCachedUser),
	).Result()
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var rec Record
	rec.Tokens.AccessToken, _ = values[0].(string)
	rec.Tokens.RefreshToken, _ = values[1].(string)
	if !rec.Tokens.Complete() {
		// A lone half is a leftover from an interrupted clear; treat as empty.
		rec.Tokens = session.TokenPair{}
	}

	if raw, ok := values[2].(string); ok && raw != "" {
		user, _, err := DecodeUser([]byte(raw))
		if err != nil {
			return Record{}, fmt.Errorf("decode cached user: %w", err)
		}
		rec.User = &user
	}

	return rec, nil
}

func (s *RedisStore) SaveTokens(ctx context.Context, tokens session.TokenPair) error {
	if err := checkTokens(tokens); err != nil {
		return err
	}

	access := s.keys.Key(KeyAccessToken)
	refresh := s.keys.Key(KeyRefreshToken)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.MSet(ctx, access, tokens.AccessToken, refresh, tokens.RefreshToken)
		if s.ttl > 0 {
			pipe.Expire(ctx, access, s.ttl)
			pipe.Expire(ctx, refresh, s.ttl)
			// A rotated pair keeps the cached user alive with it; a missing user key is a no-op.
			pipe.Expire(ctx, s.keys.Key(KeyCachedUser), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *RedisStore) SaveUser(ctx context.Context, user session.User) error {
	if err := checkUser(user); err != nil {
		return err
	}
	data, err := EncodeUser(user, s.now().Unix())
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.keys.Key(KeyCachedUser), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	err := s.redis.Del(ctx,
		s.keys.Key(KeyAccessToken),
		s.keys.Key(KeyRefreshToken),
		s.keys.Key(KeyCachedUser),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Backend returns "redis".
func (*RedisStore) Backend() string { return "redis" }
