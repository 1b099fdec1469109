// Package cache holds the Redis-backed pieces shared between service
// instances.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/terraincognita07/innercalm/internal/security"
	"go.uber.org/zap"
)

const (
	submitLockKeyPrefix     = "innercalm:submit-lock:"
	defaultLockTTL          = 10 * time.Second
	defaultLockRetryBackoff = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript renews the TTL only while the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisOwnerLocker implements services.OwnerLocker across instances with
// SET NX PX and a compare-and-delete release. The lease is renewed every
// ttl/3 until unlock, so a holder blocked on a slow classifier keeps the key.
type RedisOwnerLocker struct {
	client        *redis.Client
	ttl           time.Duration
	retryBackoff  time.Duration
	renewInterval time.Duration
	logger        *zap.Logger
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

func NewRedisOwnerLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisOwnerLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisOwnerLocker{
		client:        client,
		ttl:           ttl,
		retryBackoff:  defaultLockRetryBackoff,
		renewInterval: ttl / 3,
		logger:        logger,
	}
}

func SubmitLockKey(ownerID uint) string {
	return fmt.Sprintf("%s%d", submitLockKeyPrefix, ownerID)
}

// Lock retries until the key is free or ctx ends.
func (locker *RedisOwnerLocker) Lock(ctx context.Context, ownerID uint) (func(), error) {
	token, err := security.NewLockToken()
	if err != nil {
		return nil, fmt.Errorf("generate lock token: %w", err)
	}
	key := SubmitLockKey(ownerID)

	for {
		acquired, err := locker.client.SetNX(ctx, key, token, locker.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if acquired {
			break
		}

		timer := time.NewTimer(locker.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	stop := make(chan struct{})
	renewed := make(chan struct{})
	go locker.renew(ownerID, key, token, stop, renewed)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-renewed
			locker.release(ownerID, key, token)
		})
	}, nil
}

// renew extends the lease until stop closes or the key is no longer ours.
func (locker *RedisOwnerLocker) renew(ownerID uint, key string, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(locker.renewInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		renewCtx, cancel := context.WithTimeout(context.Background(), locker.renewInterval)
		extended, err := extendScript.Run(renewCtx, locker.client, []string{key}, token, locker.ttl.Milliseconds()).Int64()
		cancel()
		if err != nil && !errors.Is(err, redis.Nil) {
			locker.logger.Warn("renew submission lock failed",
				zap.Uint("owner_id", ownerID),
				zap.Error(err),
			)
			continue
		}
		if extended == 0 {
			locker.logger.Warn("submission lock lost before unlock", zap.Uint("owner_id", ownerID))
			return
		}
	}
}

func (locker *RedisOwnerLocker) release(ownerID uint, key string, token string) {
	releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := releaseScript.Run(releaseCtx, locker.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		locker.logger.Warn("release submission lock failed",
			zap.Uint("owner_id", ownerID),
			zap.Error(err),
		)
	}
}
