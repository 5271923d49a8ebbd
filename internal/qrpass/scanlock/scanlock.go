// Package scanlock serialises gate terminals that scan the same QR pass at
// the same moment. The lock is short-lived and advisory: the database row
// lock still guarantees single redemption, this just keeps the losing
// terminal from queueing behind it.
package scanlock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"gatehouse/pkg/platform/sentinel"
)

// ErrHeld means another terminal holds the lock for this pass.
var ErrHeld = errors.New("scan lock held by another terminal")

const keyPrefix = "qrpass:scan:"

// Release gives the lock back. Releasing an expired lock is a no-op.
type Release func(ctx context.Context) error

// RedisLock is a SET NX PX lock shared by every gatehouse instance.
type RedisLock struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	token, err := ownerToken()
	if err != nil {
		return nil, err
	}
	fullKey := keyPrefix + key
	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: scan lock: %v", sentinel.ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err()
	}, nil
}

// MemoryLock is the single-process fallback when Redis is not configured.
type MemoryLock struct {
	mu    sync.Mutex
	held  map[string]heldLock
	clock func() time.Time
}

type heldLock struct {
	token   string
	expires time.Time
}

func NewMemory() *MemoryLock {
	return &MemoryLock{held: make(map[string]heldLock), clock: time.Now}
}

func (l *MemoryLock) Acquire(_ context.Context, key string, ttl time.Duration) (Release, error) {
	token, err := ownerToken()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return nil, ErrHeld
	}
	l.held[key] = heldLock{token: token, expires: now.Add(ttl)}
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if h, ok := l.held[key]; ok && h.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

func ownerToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
