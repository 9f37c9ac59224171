package actor

import (
	"context"
	"log/slog"
)

type (
	// HandlerCtx is passed to every handler and init function. It is done
	// when the actor stops.
	HandlerCtx interface {
		context.Context
		Log() *slog.Logger
		// Self returns the id of the actor running the handler.
		Self() string
		// Schedule runs f outside the mailbox, bounded by MaxConcurrentTasks.
		Schedule(f scheduleFunc)
		// Request sends req to the actor itself and waits for the reply.
		// Calling it from inside a handler deadlocks; use it from scheduled
		// tasks or goroutines started by init.
		Request(ctx context.Context, req any) (any, error)
	}
)

type handlerCtx struct {
	context.Context
	log     *slog.Logger
	self    string
	request func(ctx context.Context, req any) (any, error)
	sched   Scheduler
}

func (hc *handlerCtx) Schedule(f scheduleFunc) { hc.sched.Schedule(f) }

func (hc *handlerCtx) Log() *slog.Logger { return hc.log }
func (hc *handlerCtx) Self() string      { return hc.self }
func (hc *handlerCtx) Request(ctx context.Context, req any) (any, error) {
	return hc.request(ctx, req)
}

var _ HandlerCtx = (*handlerCtx)(nil)
