package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lock:"

// Deletes the key only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

type RedisLocker struct {
	client redis.UniversalClient
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		client: client,
	}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string, expiry, wait time.Duration) (domain.Lock, error) {
	token := uuid.New().String()
	redisKey := redisKeyPrefix + key

	err := retry(ctx, wait, func() (bool, error) {
		ok, err := r.client.SetNX(ctx, redisKey, token, expiry).Result()
		if err != nil {
			return false, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}

		return ok, nil
	})
	if err != nil {
		return nil, err
	}

	return &redisLock{
		client: r.client,
		key:    key,
		token:  token,
	}, nil
}

type redisLock struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (l *redisLock) Key() string {
	return l.key
}

// Release is a no-op when the lock already lapsed and someone else holds it.
func (l *redisLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{redisKeyPrefix + l.key}, l.token).Err()
}
