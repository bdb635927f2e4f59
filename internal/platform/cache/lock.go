package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Locker is a single-key distributed mutex (SET NX PX with a compare-and-delete
// release).
type Locker struct {
	rdb   *redis.Client
	key   string
	ttl   time.Duration
	retry time.Duration
}

func NewLocker(rdb *redis.Client, key string, ttl time.Duration) *Locker {
	return &Locker{rdb: rdb, key: key, ttl: ttl, retry: 250 * time.Millisecond}
}

// WithLock blocks until the lock is held or ctx ends, runs fn, then releases.
func (l *Locker) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	for {
		ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", l.key, err)
		}
		if ok {
			break
		}
		log.Printf("INFO: lock %s is held elsewhere, waiting", l.key)
		select {
		case <-ctx.Done():
			return fmt.Errorf("acquire lock %s: %w", l.key, ctx.Err())
		case <-time.After(l.retry):
		}
	}
	log.Printf("INFO: acquired lock %s", l.key)

	defer func() {
		// The caller's ctx may already be done; release with a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		deleted, err := releaseScript.Run(releaseCtx, l.rdb, []string{l.key}, token).Int64()
		switch {
		case err != nil:
			log.Printf("ERROR: failed to release lock %s: %v", l.key, err)
		case deleted == 1:
			log.Printf("INFO: released lock %s", l.key)
		default:
			log.Printf("WARN: lock %s expired or was taken over before release", l.key)
		}
	}()

	return fn(ctx)
}
