package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
)

const leaseKeyPrefix = "period-engine:lease:"

// releaseScript deletes the lease only while it is still held by the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease implements adapter.DispatchLease with SET NX PX.
type RedisLease struct {
	client *redis.Client
	token  string
}

// NewRedisLease creates a lease holder identified by a random token.
func NewRedisLease(client *redis.Client) adapter.DispatchLease {
	return &RedisLease{
		client: client,
		token:  uuid.NewString(),
	}
}

// Acquire takes the lease if nobody holds it.
func (l *RedisLease) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, leaseKeyPrefix+key, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}
	return ok, nil
}

// Release gives the lease up if this holder still owns it.
func (l *RedisLease) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, l.client, []string{leaseKeyPrefix + key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release lease %s: %w", key, err)
	}
	return nil
}
