package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strconv"

	"github.com/GopherJ/xactor/core/perkey"
	"github.com/GopherJ/xactor/core/service"
	"github.com/GopherJ/xactor/internal/hrw"
)

var (
	// ErrUnknownContext is returned by RunOn for a name outside the group.
	ErrUnknownContext = errors.New("local: unknown execution context")
	// ErrClosed is returned once the group is closed.
	ErrClosed = errors.New("local: group closed")
)

// Options configure a Group.
type Options struct {
	// Contexts is the number of execution contexts. Defaults to GOMAXPROCS.
	Contexts int
	// Seed separates the key routing of groups with equal context counts.
	Seed string
	// QueueSize is the number of flows a context queues before Run blocks.
	QueueSize int
	// Service is the template of every context's registry.
	Service service.Options
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Contexts <= 0 {
		o.Contexts = runtime.GOMAXPROCS(0)
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Group is a fixed set of execution contexts.
type Group struct {
	log    *slog.Logger
	seed   string
	names  []string
	sched  *perkey.Scheduler[string, *execContext]
	cancel context.CancelFunc
}

// execContext is the state owned by one context's worker goroutine.
type execContext struct {
	name     string
	registry *service.ConfinedRegistry
}

// New creates a group whose contexts live until ctx is done or Close is
// called. Contexts and their registries are created on first use.
func New(ctx context.Context, opts Options) *Group {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)

	g := &Group{
		log:    opts.Logger.With(slog.String("component", "local")),
		seed:   opts.Seed,
		names:  make([]string, opts.Contexts),
		cancel: cancel,
	}
	for i := range g.names {
		g.names[i] = "ctx-" + strconv.Itoa(i)
	}

	g.sched = perkey.NewWithState[string, *execContext](func(name string) (*execContext, func()) {
		cctx, ccancel := context.WithCancel(ctx)
		sopts := opts.Service
		sopts.Actor.Context = cctx
		if sopts.Logger == nil {
			sopts.Logger = opts.Logger
		}
		sopts.Logger = sopts.Logger.With(slog.String("context", name))

		g.log.Debug("execution context started", slog.String("context", name))
		return &execContext{
				name:     name,
				registry: service.NewConfinedRegistry(sopts),
			}, func() {
				ccancel()
				g.log.Debug("execution context stopped", slog.String("context", name))
			}
	}, perkey.WithBufferSize(opts.QueueSize))

	return g
}

// Names returns the names of the group's contexts.
func (g *Group) Names() []string { return slices.Clone(g.names) }

// ContextFor returns the name of the context key is routed to.
func (g *Group) ContextFor(key string) string {
	name, _ := hrw.Best(key, g.names, g.seed)
	return name
}

// Run runs fn on the context key is routed to and returns its error. The
// same key always lands on the same context.
func (g *Group) Run(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return g.RunOn(ctx, g.ContextFor(key), fn)
}

// RunOn runs fn on the named context and returns its error. The ctx handed
// to fn carries the context's registry.
func (g *Group) RunOn(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if !slices.Contains(g.names, name) {
		return fmt.Errorf("%w: %q", ErrUnknownContext, name)
	}
	err := g.sched.With(ctx, name, func(ec *execContext) error {
		return fn(service.WithConfined(ctx, ec.registry))
	})
	if errors.Is(err, perkey.ErrSchedulerClosed) {
		return ErrClosed
	}
	return err
}

// Close drains queued flows, then stops every service started in the
// group's contexts. It is idempotent.
func (g *Group) Close() {
	g.sched.Close()
	g.cancel()
}
