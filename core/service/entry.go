package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/GopherJ/xactor/core/actor"
	"github.com/GopherJ/xactor/core/reflector"
)

// entry holds one type-erased handle. Its dynamic type is always
// actor.Addr[PS] for the service type the entry is keyed by.
type entry struct {
	handle any
	// ready is closed once startup finished; err is written before.
	ready chan struct{}
	err   error
	// waiting counts callers parked in wait.
	waiting atomic.Int32
}

func newEntry(handle any) *entry {
	return &entry{handle: handle, ready: make(chan struct{})}
}

func (e *entry) complete(err error) {
	e.err = err
	close(e.ready)
}

// done blocks until startup finished or ctx ends.
func (e *entry) done(ctx context.Context) error {
	select {
	case <-e.ready:
		return e.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wait blocks until the instance behind the entry finished starting. A
// flow that is itself an instance of owner returns at once: its messages
// queue until the instance runs.
func (e *entry) wait(ctx context.Context, owner any) error {
	select {
	case <-e.ready:
		return e.err
	default:
	}
	if instanceOf(ctx, owner) {
		return nil
	}
	e.waiting.Add(1)
	defer e.waiting.Add(-1)
	return e.done(ctx)
}

// handleOf recovers the typed handle stored under key. A mismatch means the
// registry broke its own keying invariant.
func handleOf[PS actor.Actor](key reflector.Key, h any) actor.Addr[PS] {
	addr, ok := h.(actor.Addr[PS])
	if !ok {
		panic(fmt.Sprintf("service: registry entry %s holds %T, want %T", key, h, addr))
	}
	return addr.Clone()
}
