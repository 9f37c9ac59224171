package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/GopherJ/xactor/core/actor"
	"github.com/GopherJ/xactor/core/local"
	"github.com/GopherJ/xactor/core/service"
)

// ActorOptions is the template applied to every service the app starts.
type ActorOptions struct {
	MailboxSize        int
	MaxConcurrentTasks int
	Metrics            actor.ActorMetrics
}

type LocalConfig struct {
	// Contexts is the number of execution contexts; 0 means GOMAXPROCS.
	Contexts  int
	Seed      string
	QueueSize int
}

type Config struct {
	Context context.Context
	Log     *slog.Logger
	// ID names the app in logs. A random id is generated when empty.
	ID      string
	Actor   ActorOptions
	Local   LocalConfig
	Metrics service.Metrics
}

type App struct {
	id        string
	ctx       context.Context
	log       *slog.Logger
	cancelCtx context.CancelFunc
	registry  *service.SharedRegistry
	local     *local.Group
	done      chan struct{}
	runOnce   sync.Once
}

var ErrInvalidConfig = errors.New("app: invalid config")

func New(config Config) (app *App, err error) {
	if config.Local.Contexts < 0 {
		return nil, fmt.Errorf("%w: local.contexts must not be negative, got %d", ErrInvalidConfig, config.Local.Contexts)
	}
	if config.Actor.MailboxSize < 0 || config.Actor.MaxConcurrentTasks < 0 {
		return nil, fmt.Errorf("%w: actor sizes must not be negative", ErrInvalidConfig)
	}

	app = &App{done: make(chan struct{})}

	app.id = config.ID
	if app.id == "" {
		app.id = fmt.Sprintf("app-%s", gonanoid.Must(6))
	}

	// === logger ===
	if config.Log == nil {
		config.Log = slog.Default()
	}
	app.log = config.Log.With(slog.String("app", app.id))

	// === context ===
	if config.Context == nil {
		config.Context = context.Background()
	}
	app.ctx, app.cancelCtx = context.WithCancel(config.Context)

	// === registries ===
	svcOpts := service.Options{
		Actor: actor.Options{
			Context:            app.ctx,
			Logger:             app.log,
			MailboxSize:        config.Actor.MailboxSize,
			MaxConcurrentTasks: config.Actor.MaxConcurrentTasks,
			Metrics:            config.Actor.Metrics,
		},
		Logger:  app.log,
		Metrics: config.Metrics,
	}
	app.registry = service.NewSharedRegistry(svcOpts)
	app.local = local.New(app.ctx, local.Options{
		Contexts:  config.Local.Contexts,
		Seed:      config.Local.Seed,
		QueueSize: config.Local.QueueSize,
		Service:   svcOpts,
		Logger:    app.log,
	})

	app.log.Debug("creating app", slog.Any("local", config.Local), slog.Any("actor", config.Actor))
	return app, nil
}

// ID returns the app's id.
func (a *App) ID() string { return a.id }

// Registry returns the app's shared registry.
func (a *App) Registry() *service.SharedRegistry { return a.registry }

// Local returns the app's execution contexts.
func (a *App) Local() *local.Group { return a.local }

// Context is done once the app stops.
func (a *App) Context() context.Context { return a.ctx }

// Run starts the app's shutdown watcher. It returns immediately.
func (a *App) Run() error {
	a.runOnce.Do(func() {
		go func() {
			<-a.ctx.Done()
			a.local.Close()
			a.log.Info("app stopped")
			close(a.done)
		}()
		a.log.Info("app started", slog.Int("contexts", len(a.local.Names())))
	})
	return a.ctx.Err()
}

// Stop requests shutdown. It is idempotent and does not wait.
func (a *App) Stop() {
	a.cancelCtx()
}

// Shutdown stops the app and waits until it is done or ctx expires.
func (a *App) Shutdown(ctx context.Context) error {
	_ = a.Run()
	a.Stop()
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown: %w", ctx.Err())
	}
}

// Done is closed once a running app has stopped.
func (a *App) Done() <-chan struct{} { return a.done }

// Resolve returns the app-wide instance of service S.
func Resolve[S any, PS service.Service[S]](ctx context.Context, a *App) (actor.Addr[PS], error) {
	return service.Resolve[S, PS](ctx, a.registry)
}

func Run(config Config) (app *App, err error) {
	app, err = New(config)
	if err != nil {
		return nil, err
	}

	err = app.Run()
	if err != nil {
		return nil, err
	}

	return app, nil
}
