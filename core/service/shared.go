package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/GopherJ/xactor/core/actor"
	"github.com/GopherJ/xactor/core/reflector"
)

// SharedRegistry holds at most one instance per service type and may be
// used from any goroutine.
type SharedRegistry struct {
	opts Options
	log  *slog.Logger

	// lock guards entries. Acquiring it honours context cancellation.
	lock    *semaphore.Weighted
	entries map[reflector.Key]*entry
}

// NewSharedRegistry creates an empty registry. Most code uses [Default].
func NewSharedRegistry(opts Options) *SharedRegistry {
	opts = opts.withDefaults()
	return &SharedRegistry{
		opts:    opts,
		log:     opts.Logger.With(slog.String("registry", string(ScopeShared))),
		lock:    semaphore.NewWeighted(1),
		entries: make(map[reflector.Key]*entry),
	}
}

// Len returns the number of registered services.
func (r *SharedRegistry) Len(ctx context.Context) (int, error) {
	if err := r.lock.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer r.lock.Release(1)
	return len(r.entries), nil
}

// Resolve returns the registry's instance of service S. The first
// resolution creates the instance: its handle is registered while the lock
// is held and the instance starts in the background once the lock is
// released. The creating caller and later callers wait for the startup
// outcome; if startup fails they all get the error and the entry is
// dropped. Callers that are themselves instances started by r get the
// handle at once, so services may resolve each other during Init; a
// failed start then surfaces as actor.ErrStopped on their first message.
func Resolve[S any, PS Service[S]](ctx context.Context, r *SharedRegistry) (actor.Addr[PS], error) {
	defer r.opts.Metrics.ResolveDuration(ScopeShared).ObserveDuration()

	key := reflector.KeyFor[S]()
	name := key.String()

	if err := r.lock.Acquire(ctx, 1); err != nil {
		return actor.Addr[PS]{}, fmt.Errorf("resolve %s: %w", name, err)
	}

	if e, ok := r.entries[key]; ok {
		addr := handleOf[PS](key, e.handle)
		r.lock.Release(1)

		if err := e.wait(ctx, r); err != nil {
			return actor.Addr[PS]{}, fmt.Errorf("resolve %s: %w", name, err)
		}
		r.opts.Metrics.Resolved(ScopeShared, name, false)
		return addr, nil
	}

	actx, rx := actor.NewContext[PS](r.opts.actorOptions(r, key))
	addr := actx.Address()
	e := newEntry(addr)
	r.entries[key] = e
	n := len(r.entries)
	r.lock.Release(1)

	r.opts.Metrics.Entries(ScopeShared, n)

	// Startup outlives an abandoned resolution; the entry is settled either way.
	go func() {
		if err := actor.Start(actx, rx, PS(new(S)), true); err != nil {
			r.evict(key, e, err)
			return
		}
		e.complete(nil)
		r.log.Debug("service started", slog.String("service", name), slog.String("actor", addr.ID()))
	}()

	// Instances of r never block on another instance's startup.
	if !instanceOf(ctx, r) {
		if err := e.done(ctx); err != nil {
			return actor.Addr[PS]{}, fmt.Errorf("resolve %s: %w", name, err)
		}
	}
	r.opts.Metrics.Resolved(ScopeShared, name, true)
	return addr.Clone(), nil
}

// evict drops an entry whose instance failed to start and releases its
// waiters with err.
func (r *SharedRegistry) evict(key reflector.Key, e *entry, err error) {
	// Background: the failing caller may already be cancelled, but the
	// entry must go regardless.
	_ = r.lock.Acquire(context.Background(), 1)
	if r.entries[key] == e {
		delete(r.entries, key)
	}
	n := len(r.entries)
	r.lock.Release(1)

	e.complete(err)

	r.log.Warn("service failed to start", slog.String("service", key.String()), slog.Any("error", err))
	r.opts.Metrics.StartFailed(ScopeShared, key.String())
	r.opts.Metrics.Entries(ScopeShared, n)
}
