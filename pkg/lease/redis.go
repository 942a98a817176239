package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "flowd:execution:lease:"

// releaseScript deletes the key only when this holder still owns it, so an
// expired lease re-acquired by another worker is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease implements ExecutionLease with SETNX plus TTL.
type RedisLease struct {
	client *redis.Client
	holder string
}

func NewRedisLease(client *redis.Client) *RedisLease {
	return &RedisLease{
		client: client,
		holder: uuid.New().String(),
	}
}

func (l *RedisLease) Acquire(ctx context.Context, executionID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	acquired, err := l.client.SetNX(ctx, keyPrefix+executionID, l.holder, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease for execution %s: %w", executionID, err)
	}

	return acquired, nil
}

func (l *RedisLease) Release(ctx context.Context, executionID string) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{keyPrefix + executionID}, l.holder).Int()
	if err != nil {
		return fmt.Errorf("failed to release lease for execution %s: %w", executionID, err)
	}

	if deleted == 0 {
		return ErrNotHeld
	}

	return nil
}
