package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

// ErrBusy is returned when another writer holds the document lock
var ErrBusy = errors.New("document is locked by another writer")

// Mutex serialises document updates inside one process
type Mutex struct {
	mu sync.Mutex
}

func NewMutex() *Mutex {
	return &Mutex{}
}

// Lock implements document.Locker
func (m *Mutex) Lock(ctx context.Context) (func(context.Context) error, error) {
	m.mu.Lock()
	return func(context.Context) error {
		m.mu.Unlock()
		return nil
	}, nil
}

// Obtainer is the part of a redislock client the locker uses
type Obtainer interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

// Redis serialises document updates across processes with a Redis lease
type Redis struct {
	client Obtainer
	key    string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedis creates a distributed locker for the named document. Waiting is
// bounded by ttl so a crashed holder cannot block writers for longer than its lease.
func NewRedis(client Obtainer, name string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    fmt.Sprintf("backoffice:lock:%s", name),
		ttl:    ttl,
		retry:  100 * time.Millisecond,
	}
}

// Lock implements document.Locker
func (r *Redis) Lock(ctx context.Context) (func(context.Context) error, error) {
	waitCtx, cancel := context.WithTimeout(ctx, r.ttl)
	defer cancel()

	l, err := r.client.Obtain(waitCtx, r.key, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(r.retry),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", r.key, err)
	}

	return func(ctx context.Context) error {
		if err := l.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}
