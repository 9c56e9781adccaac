// Package lock provides named mutual exclusion, backed by Redis when several
// processes share a database and by an in-process table otherwise.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when the lock is held elsewhere for longer than the wait
var ErrNotObtained = errors.New("lock not obtained")

// Lock is a held lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains named locks. ttl bounds how long a crashed holder can keep
// the lock; wait bounds how long Obtain blocks before giving up.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl, wait time.Duration) (Lock, error)
}

// RedisLocker

type redisLocker struct {
	client *redislock.Client
}

// NewRedisLocker creates a Locker backed by redislock
func NewRedisLocker(rdb *redis.Client) Locker {
	return &redisLocker{client: redislock.New(rdb)}
}

func (l *redisLocker) Obtain(ctx context.Context, key string, ttl, wait time.Duration) (Lock, error) {
	opts := &redislock.Options{}
	if wait > 0 {
		backoff := 50 * time.Millisecond
		opts.RetryStrategy = redislock.LimitRetry(redislock.LinearBackoff(backoff), int(wait/backoff))
	}
	lk, err := l.client.Obtain(ctx, key, ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, err
	}
	return lk, nil
}

// LocalLocker

type localEntry struct {
	ch   chan struct{}
	refs int
}

type localLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
}

// NewLocalLocker creates an in-process Locker. ttl is ignored.
func NewLocalLocker() Locker {
	return &localLocker{entries: make(map[string]*localEntry)}
}

func (l *localLocker) Obtain(ctx context.Context, key string, _ time.Duration, wait time.Duration) (Lock, error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return &localLock{owner: l, key: key, entry: e}, nil
	default:
	}

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case e.ch <- struct{}{}:
			return &localLock{owner: l, key: key, entry: e}, nil
		case <-timer.C:
		case <-ctx.Done():
			l.unref(key, e)
			return nil, ctx.Err()
		}
	}

	l.unref(key, e)
	return nil, ErrNotObtained
}

func (l *localLocker) unref(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

type localLock struct {
	owner *localLocker
	key   string
	entry *localEntry
	once  sync.Once
}

func (lk *localLock) Release(_ context.Context) error {
	lk.once.Do(func() {
		<-lk.entry.ch
		lk.owner.unref(lk.key, lk.entry)
	})
	return nil
}
