package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched value is served without going back to
// the backend.
const DefaultTTL = 30 * time.Second

// Store is a shared second tier behind the per-process entry, letting
// several processes reuse one fetch within the TTL.
type Store interface {
	Load(ctx context.Context, key string, dest any) (storedAt time.Time, ok bool, err error)
	Save(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Fetcher[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	value    T
	storedAt time.Time
	seq      uint64
}

// Resource memoizes a single remote value.
//
// Non-forced calls that miss share one in-flight fetch. Forced calls always
// fetch. Each fetch is numbered when it starts and a result only replaces
// the cached entry if it started after the one already stored, so a slow
// response can never overwrite newer data. Invalidate raises a floor so that
// fetches started before it are never cached.
type Resource[T any] struct {
	key    string
	ttl    time.Duration
	fetch  Fetcher[T]
	store  Store
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	entry *entry[T]
	seq   uint64
	floor uint64
}

type Option[T any] func(*Resource[T])

func WithStore[T any](s Store) Option[T] {
	return func(r *Resource[T]) { r.store = s }
}

func WithClock[T any](now func() time.Time) Option[T] {
	return func(r *Resource[T]) { r.now = now }
}

func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(r *Resource[T]) { r.logger = l }
}

func NewResource[T any](key string, ttl time.Duration, fetch Fetcher[T], opts ...Option[T]) *Resource[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Resource[T]{
		key:    key,
		ttl:    ttl,
		fetch:  fetch,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resource[T]) Key() string {
	return r.key
}

// Get returns the cached value when it is younger than the TTL and force is
// false; otherwise it fetches.
func (r *Resource[T]) Get(ctx context.Context, force bool) (T, error) {
	if force {
		return r.load(ctx)
	}

	if v, ok := r.cached(); ok {
		return v, nil
	}
	if v, ok := r.loadShared(ctx); ok {
		return v, nil
	}

	// The shared fetch outlives any single caller; a caller that gives up
	// returns at once while the others keep waiting.
	ch := r.group.DoChan(r.key, func() (any, error) {
		return r.load(context.WithoutCancel(ctx))
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		var zero T
		return zero, res.Err
	}
	return res.Val.(T), nil
}

// Invalidate drops the cached value in both tiers.
func (r *Resource[T]) Invalidate(ctx context.Context) {
	r.mu.Lock()
	r.entry = nil
	r.floor = r.seq
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.Delete(ctx, r.key); err != nil {
			r.logger.Warn("failed to delete shared cache entry", "key", r.key, "error", err)
		}
	}
}

// Age reports how old the cached value is, or false when nothing is cached.
func (r *Resource[T]) Age() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entry == nil {
		return 0, false
	}
	return r.now().Sub(r.entry.storedAt), true
}

func (r *Resource[T]) cached() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entry != nil && r.now().Sub(r.entry.storedAt) < r.ttl {
		return r.entry.value, true
	}
	var zero T
	return zero, false
}

func (r *Resource[T]) loadShared(ctx context.Context) (T, bool) {
	var zero T
	if r.store == nil {
		return zero, false
	}

	var v T
	storedAt, ok, err := r.store.Load(ctx, r.key, &v)
	if err != nil {
		r.logger.Warn("failed to read shared cache", "key", r.key, "error", err)
		return zero, false
	}
	if !ok || r.now().Sub(storedAt) >= r.ttl {
		return zero, false
	}

	r.mu.Lock()
	if r.entry == nil || r.entry.storedAt.Before(storedAt) {
		r.entry = &entry[T]{value: v, storedAt: storedAt, seq: r.seq}
	}
	r.mu.Unlock()
	return v, true
}

func (r *Resource[T]) load(ctx context.Context) (T, error) {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	v, err := r.fetch(ctx)
	if err != nil {
		return v, err
	}

	storedAt := r.now()
	r.mu.Lock()
	fresh := seq > r.floor && (r.entry == nil || seq > r.entry.seq)
	if fresh {
		r.entry = &entry[T]{value: v, storedAt: storedAt, seq: seq}
	}
	r.mu.Unlock()

	if !fresh {
		r.logger.Debug("discarding stale response", "key", r.key, "seq", seq)
		return v, nil
	}
	if r.store != nil {
		if err := r.store.Save(ctx, r.key, v, r.ttl); err != nil {
			r.logger.Warn("failed to write shared cache", "key", r.key, "error", err)
		}
	}
	return v, nil
}
