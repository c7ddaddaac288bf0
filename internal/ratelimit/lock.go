package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker is a best-effort mutual exclusion keyed by name. With a Redis client it
// spans instances; without one it only guards the current process.
type Locker struct {
	client *redis.Client
	script *redis.Script

	mu    sync.Mutex
	local map[string]localLock
	now   func() time.Time
}

type localLock struct {
	token     string
	expiresAt time.Time
}

func NewLocker(client *redis.Client) *Locker {
	l := &Locker{local: make(map[string]localLock), now: time.Now}
	if client != nil {
		l.client = client
		l.script = redis.NewScript(lockReleaseScript)
	}
	return l
}

func (l *Locker) Distributed() bool {
	return l != nil && l.client != nil
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	if l.client == nil {
		return l.tryLocal(key, token, ttl)
	}
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	if l.client == nil {
		l.mu.Lock()
		if current, ok := l.local[key]; ok && current.token == token {
			delete(l.local, key)
		}
		l.mu.Unlock()
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

func (l *Locker) tryLocal(key, token string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if current, ok := l.local[key]; ok && now.Before(current.expiresAt) {
		return token, false, nil
	}
	l.local[key] = localLock{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}
