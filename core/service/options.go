package service

import (
	"context"
	"log/slog"

	"github.com/GopherJ/xactor/core/actor"
	"github.com/GopherJ/xactor/core/reflector"
)

// Options configure a registry.
type Options struct {
	// Actor is the template for every instance the registry starts. Its
	// Context bounds the lifetime of those instances; ID is ignored.
	Actor   actor.Options
	Logger  *slog.Logger
	Metrics Metrics
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = NopMetrics()
	}
	if o.Actor.Context == nil {
		o.Actor.Context = context.Background()
	}
	if o.Actor.Logger == nil {
		o.Actor.Logger = o.Logger
	}
	return o
}

// actorOptions derives the options of a new instance of the service key
// started by owner.
func (o Options) actorOptions(owner any, key reflector.Key) actor.Options {
	opt := o.Actor
	opt.ID = ""
	opt.Context = withInstance(opt.Context, owner, key)
	opt.Logger = opt.Logger.With(slog.String("service", key.String()))
	return opt
}
