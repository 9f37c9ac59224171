package actor

import (
	"context"
	"fmt"
)

// Context is the addressable side of an actor that may not be running yet.
// It is created by [NewContext] and consumed by [Start].
type Context[A Actor] struct {
	c *cell
}

// Receiver is the inbound side paired with a [Context]. It is handed to
// [Start] together with its context.
type Receiver struct {
	c *cell
}

// Addr is a lightweight handle to an actor of type A. Addr values are
// copied freely; every copy refers to the same actor. The zero Addr refers
// to no actor.
type Addr[A Actor] struct {
	c *cell
}

// NewContext creates a fresh actor context and its receiver. Messages sent
// to the context's address before [Start] are queued in the mailbox and
// processed once the actor runs.
func NewContext[A Actor](opt Options) (*Context[A], *Receiver) {
	c := newCell(opt)
	return &Context[A]{c: c}, &Receiver{c: c}
}

// Address returns a handle to the context's actor. It may be called any
// number of times; all returned values are equal.
func (ctx *Context[A]) Address() Addr[A] { return Addr[A]{c: ctx.c} }

// Close releases a context that will never be started. Queued requests
// fail with [ErrStopped].
func (ctx *Context[A]) Close() { ctx.c.shutdown() }

// Start binds instance a to the context and begins its message loop. The
// instance's init handlers run before Start returns; their error is returned
// and leaves the actor stopped. service marks registry-managed singletons.
func Start[A Actor](ctx *Context[A], rx *Receiver, a A, service bool) error {
	return StartContext(context.Background(), ctx, rx, a, service)
}

// StartContext is like Start but stops waiting for init once wait ends. The
// returned error then wraps wait's error while init continues; the
// actor either runs or stops on its own, observable through Done.
func StartContext[A Actor](wait context.Context, ctx *Context[A], rx *Receiver, a A, service bool) error {
	if rx == nil || ctx.c != rx.c {
		return ErrReceiverMismatch
	}
	return ctx.c.start(wait, TypedHandlers(a.Handlers()...), service)
}

// Spawn creates a context for a and starts it.
func Spawn[A Actor](opt Options, a A) (Addr[A], error) {
	ctx, rx := NewContext[A](opt)
	if err := Start(ctx, rx, a, false); err != nil {
		return Addr[A]{}, err
	}
	return ctx.Address(), nil
}

// ID returns the actor's id.
func (a Addr[A]) ID() string {
	if a.c == nil {
		return ""
	}
	return a.c.id
}

// Clone returns another handle to the same actor.
func (a Addr[A]) Clone() Addr[A] { return Addr[A]{c: a.c} }

// Equal reports whether both handles refer to the same actor.
func (a Addr[A]) Equal(other Addr[A]) bool { return a.c == other.c }

// IsZero reports whether the handle refers to no actor.
func (a Addr[A]) IsZero() bool { return a.c == nil }

// IsService reports whether the actor was started as a registry-managed
// service.
func (a Addr[A]) IsService() bool { return a.c != nil && a.c.isService() }

// Send enqueues an envelope.
func (a Addr[A]) Send(ctx context.Context, e Envelope) error {
	if a.c == nil {
		return ErrStopped
	}
	return a.c.send(ctx, e)
}

// TrySend attempts a non-blocking enqueue.
func (a Addr[A]) TrySend(e Envelope) bool { return a.c != nil && a.c.trySend(e) }

// Pause prevents further processing until Resume or Step.
func (a Addr[A]) Pause() error { return a.ctrl(ctrlPause) }

// Resume enables continuous processing (disables step mode).
func (a Addr[A]) Resume() error { return a.ctrl(ctrlResume) }

// EnableStepMode makes the actor process only when Step() is called.
func (a Addr[A]) EnableStepMode() error { return a.ctrl(ctrlEnableStep) }

// Step permits exactly one message to be processed.
func (a Addr[A]) Step() error { return a.ctrl(ctrlStep) }

// Done is closed when the actor stops.
func (a Addr[A]) Done() <-chan struct{} {
	if a.c == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return a.c.done
}

// Stop requests shutdown and waits for completion.
func (a Addr[A]) Stop() {
	if a.c != nil {
		a.c.shutdown()
	}
}

// Ref returns the untyped view of the handle.
func (a Addr[A]) Ref() Ref { return a }

func (a Addr[A]) String() string { return fmt.Sprintf("actor(%s)", a.ID()) }

func (a Addr[A]) ctrl(k ctrlKind) error {
	if a.c == nil {
		return ErrStopped
	}
	return a.c.sendCtrl(k)
}

var _ Ref = Addr[Actor]{}
