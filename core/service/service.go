package service

import (
	"context"
	"sync"

	"github.com/GopherJ/xactor/core/actor"
	"github.com/GopherJ/xactor/core/reflector"
)

// Service constrains PS to be the pointer type of S and an actor. Type
// inference fills PS in: FromRegistry[Counter](ctx) resolves *Counter.
type Service[S any] interface {
	*S
	actor.Actor
}

var defaultRegistry = sync.OnceValue(func() *SharedRegistry {
	return NewSharedRegistry(Options{})
})

// Default returns the process-wide registry used by FromRegistry.
func Default() *SharedRegistry { return defaultRegistry() }

// FromRegistry returns the process-wide instance of service S, starting it
// on first use.
func FromRegistry[S any, PS Service[S]](ctx context.Context) (actor.Addr[PS], error) {
	return Resolve[S, PS](ctx, Default())
}

// FromLocalRegistry returns the instance of service S owned by the
// execution context bound to ctx, starting it on first use in that context.
func FromLocalRegistry[S any, PS Service[S]](ctx context.Context) (actor.Addr[PS], error) {
	r, ok := ConfinedFrom(ctx)
	if !ok {
		return actor.Addr[PS]{}, ErrNoExecutionContext
	}
	return ResolveLocal[S, PS](ctx, r)
}

type (
	confinedKey struct{}
	instanceKey struct{}
)

// WithConfined binds r to ctx. Only the flow owning r may use the result.
func WithConfined(ctx context.Context, r *ConfinedRegistry) context.Context {
	return context.WithValue(ctx, confinedKey{}, r)
}

// ConfinedFrom returns the registry bound to ctx by WithConfined.
func ConfinedFrom(ctx context.Context) (*ConfinedRegistry, bool) {
	r, ok := ctx.Value(confinedKey{}).(*ConfinedRegistry)
	return r, ok && r != nil
}

// instanceMark records that a flow runs inside a service instance started
// by owner. Marks chain, so a flow knows every registry it serves.
type instanceMark struct {
	owner  any
	key    reflector.Key
	parent *instanceMark
}

// withInstance marks the lifetime context of an instance of key started by
// owner.
func withInstance(ctx context.Context, owner any, key reflector.Key) context.Context {
	parent, _ := ctx.Value(instanceKey{}).(*instanceMark)
	return context.WithValue(ctx, instanceKey{}, &instanceMark{owner: owner, key: key, parent: parent})
}

// instanceOf reports whether ctx belongs to an instance started by owner.
func instanceOf(ctx context.Context, owner any) bool {
	m, _ := ctx.Value(instanceKey{}).(*instanceMark)
	for ; m != nil; m = m.parent {
		if m.owner == owner {
			return true
		}
	}
	return false
}

// ServiceName returns the name service S is reported under in logs and
// metrics.
func ServiceName[S any]() string { return reflector.KeyFor[S]().String() }
