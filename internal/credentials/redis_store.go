package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "taskboard:credentials:"

const (
	fieldToken     = "token"
	fieldRole      = "role"
	fieldExpiresAt = "expires_at"
)

// RedisStore keeps the record in a hash that expires with the session.
type RedisStore struct {
	client redis.Cmdable
	key    string
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore scopes the record to namespace.
func NewRedisStore(client redis.Cmdable, namespace string, opts ...Option) *RedisStore {
	o := buildOptions(opts)
	return &RedisStore{client: client, key: redisKeyPrefix + namespace, now: o.now}
}

func (s *RedisStore) Persist(ctx context.Context, record Record, ttl time.Duration) error {
	if ttl <= 0 {
		return unavailable("persist redis record", errors.New("ttl must be positive"))
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key,
			fieldToken, record.Token,
			fieldRole, record.Role,
			fieldExpiresAt, formatExpiry(record.ExpiresAt),
		)
		pipe.Expire(ctx, s.key, ttl)
		return nil
	})
	if err != nil {
		return unavailable("persist redis record", err)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context) (Record, bool, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Record{}, false, unavailable("read redis record", err)
	}
	expiresAt, ok := parseExpiry(values[fieldExpiresAt])
	if !ok {
		return Record{}, false, nil
	}
	record := Record{Token: values[fieldToken], Role: values[fieldRole], ExpiresAt: expiresAt}
	if !record.LiveAt(s.now()) {
		return Record{}, false, nil
	}
	return record, true, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return unavailable("clear redis record", err)
	}
	return nil
}
