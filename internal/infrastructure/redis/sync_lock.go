package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is a short-TTL mutex over Redis SETNX. The TTL bounds how long a
// crashed holder can block subsequent sync runs.
type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Lock {
	return &Lock{Client: client, TTL: ttl}
}

// TryAcquire returns true if key was free and is now held.
func (l *Lock) TryAcquire(ctx context.Context, key string) (bool, error) {
	ok, err := l.Client.SetNX(ctx, key, "1", l.TTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (l *Lock) Release(ctx context.Context, key string) error {
	return l.Client.Del(ctx, key).Err()
}
