package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GopherJ/xactor/core/actor"
	"github.com/GopherJ/xactor/core/reflector"
)

// ConfinedRegistry holds at most one instance per service type for a single
// execution context. It has no lock: it must only be used by the flow that
// owns it.
type ConfinedRegistry struct {
	opts    Options
	log     *slog.Logger
	entries map[reflector.Key]any
}

// NewConfinedRegistry creates an empty registry. The lifetime of the
// instances it starts is bounded by opts.Actor.Context.
func NewConfinedRegistry(opts Options) *ConfinedRegistry {
	opts = opts.withDefaults()
	return &ConfinedRegistry{
		opts:    opts,
		log:     opts.Logger.With(slog.String("registry", string(ScopeConfined))),
		entries: make(map[reflector.Key]any),
	}
}

// Len returns the number of registered services.
func (r *ConfinedRegistry) Len() int { return len(r.entries) }

// ResolveLocal returns the registry's instance of service S, creating and
// starting it on first use. A failed or abandoned start leaves no entry
// behind.
func ResolveLocal[S any, PS Service[S]](ctx context.Context, r *ConfinedRegistry) (actor.Addr[PS], error) {
	defer r.opts.Metrics.ResolveDuration(ScopeConfined).ObserveDuration()

	key := reflector.KeyFor[S]()
	name := key.String()

	if h, ok := r.entries[key]; ok {
		r.opts.Metrics.Resolved(ScopeConfined, name, false)
		return handleOf[PS](key, h), nil
	}
	if err := ctx.Err(); err != nil {
		return actor.Addr[PS]{}, fmt.Errorf("resolve %s: %w", name, err)
	}

	actx, rx := actor.NewContext[PS](r.opts.actorOptions(r, key))
	addr := actx.Address()
	if err := actor.StartContext(ctx, actx, rx, PS(new(S)), true); err != nil {
		if ctx.Err() != nil {
			// Abandoned: the instance may still come up, but nothing can reach it.
			go actx.Close()
			return actor.Addr[PS]{}, fmt.Errorf("resolve %s: %w", name, ctx.Err())
		}
		r.log.Warn("service failed to start", slog.String("service", name), slog.Any("error", err))
		r.opts.Metrics.StartFailed(ScopeConfined, name)
		return actor.Addr[PS]{}, fmt.Errorf("resolve %s: %w", name, err)
	}

	r.entries[key] = addr
	r.log.Debug("service started", slog.String("service", name), slog.String("actor", addr.ID()))
	r.opts.Metrics.Entries(ScopeConfined, len(r.entries))
	r.opts.Metrics.Resolved(ScopeConfined, name, true)
	return addr.Clone(), nil
}
