package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/GopherJ/xactor/core/actor"
)

type (
	harnessKey struct{}

	// harness lets a test observe and steer the services it starts.
	harness struct {
		starts   atomic.Int32
		fail     atomic.Bool
		gate     chan struct{}
		registry *SharedRegistry
	}
)

var errStartup = errors.New("startup refused")

func harnessFrom(ctx context.Context) *harness {
	p, _ := ctx.Value(harnessKey{}).(*harness)
	return p
}

func (p *harness) init(hc actor.HandlerCtx) error {
	if p == nil {
		return nil
	}
	p.starts.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	if p.fail.Load() {
		return errStartup
	}
	return nil
}

func newHarness(t *testing.T) (*harness, Options) {
	p := &harness{}
	return p, Options{
		Actor: actor.Options{Context: context.WithValue(t.Context(), harnessKey{}, p)},
	}
}

func newTestRegistry(t *testing.T) (*SharedRegistry, *harness) {
	p, opts := newHarness(t)
	r := NewSharedRegistry(opts)
	p.registry = r
	return r, p
}

// ---- test services ----

type (
	Inc      struct{}
	Get      struct{}
	Total    struct{ N int }
	Name     struct{}
	NameResp struct{ Name string }
	Self     struct{}
	SelfResp struct{ SameActor bool }
)

type counterSvc struct{ n int }

func (c *counterSvc) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.Init(func(hc actor.HandlerCtx) error { return harnessFrom(hc).init(hc) }),
		actor.HandleRequest[Inc, Total](func(hc actor.HandlerCtx, _ Inc) (*Total, error) {
			c.n++
			return &Total{N: c.n}, nil
		}),
		actor.HandleRequest[Get, Total](func(hc actor.HandlerCtx, _ Get) (*Total, error) {
			return &Total{N: c.n}, nil
		}),
	}
}

type otherSvc struct{}

func (o *otherSvc) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.Init(func(hc actor.HandlerCtx) error { return harnessFrom(hc).init(hc) }),
		actor.HandleRequest[Name, NameResp](func(hc actor.HandlerCtx, _ Name) (*NameResp, error) {
			return &NameResp{Name: "other"}, nil
		}),
	}
}

// selfSvc resolves itself while starting.
type selfSvc struct {
	self actor.Addr[*selfSvc]
}

func (s *selfSvc) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.Init(func(hc actor.HandlerCtx) error {
			addr, err := Resolve[selfSvc](hc, harnessFrom(hc).registry)
			if err != nil {
				return err
			}
			s.self = addr
			return nil
		}),
		actor.HandleRequest[Self, SelfResp](func(hc actor.HandlerCtx, _ Self) (*SelfResp, error) {
			return &SelfResp{SameActor: s.self.ID() == hc.Self()}, nil
		}),
	}
}

// defaultOnlySvc is only resolved through the process-wide registry.
type defaultOnlySvc struct{ counterSvc }

// cycA and cycB resolve each other while starting.
type (
	cycA struct{ peer actor.Addr[*cycB] }
	cycB struct{ peer actor.Addr[*cycA] }

	PeerID     struct{}
	PeerIDResp struct{ ID string }
)

func (a *cycA) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.Init(func(hc actor.HandlerCtx) error {
			var err error
			a.peer, err = Resolve[cycB](hc, harnessFrom(hc).registry)
			return err
		}),
		actor.HandleRequest[PeerID, PeerIDResp](func(hc actor.HandlerCtx, _ PeerID) (*PeerIDResp, error) {
			return &PeerIDResp{ID: a.peer.ID()}, nil
		}),
	}
}

func (b *cycB) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.Init(func(hc actor.HandlerCtx) error {
			var err error
			b.peer, err = Resolve[cycA](hc, harnessFrom(hc).registry)
			return err
		}),
		actor.HandleRequest[PeerID, PeerIDResp](func(hc actor.HandlerCtx, _ PeerID) (*PeerIDResp, error) {
			return &PeerIDResp{ID: b.peer.ID()}, nil
		}),
	}
}

// asker requests from lookup during Init; lookup resolves asker in its
// handler while asker is still starting.
type (
	asker  struct{ seen string }
	lookup struct{}

	WhoAsks     struct{}
	WhoAsksResp struct{ ID string }
	Seen        struct{}
)

func (a *asker) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.Init(func(hc actor.HandlerCtx) error {
			l, err := Resolve[lookup](hc, harnessFrom(hc).registry)
			if err != nil {
				return err
			}
			res, err := actor.Request[WhoAsks, WhoAsksResp](hc, l, WhoAsks{})
			if err != nil {
				return err
			}
			a.seen = res.ID
			return nil
		}),
		actor.HandleRequest[Seen, WhoAsksResp](func(hc actor.HandlerCtx, _ Seen) (*WhoAsksResp, error) {
			return &WhoAsksResp{ID: a.seen}, nil
		}),
	}
}

func (l *lookup) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.HandleRequest[WhoAsks, WhoAsksResp](func(hc actor.HandlerCtx, _ WhoAsks) (*WhoAsksResp, error) {
			a, err := Resolve[asker](hc, harnessFrom(hc).registry)
			if err != nil {
				return nil, err
			}
			return &WhoAsksResp{ID: a.ID()}, nil
		}),
	}
}

// host creates guest during Init; guest's Init requests host before host
// has finished starting.
type (
	host  struct{}
	guest struct{ hostID string }
)

func (h *host) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.Init(func(hc actor.HandlerCtx) error {
			_, err := Resolve[guest](hc, harnessFrom(hc).registry)
			return err
		}),
		actor.HandleRequest[WhoAsks, WhoAsksResp](func(hc actor.HandlerCtx, _ WhoAsks) (*WhoAsksResp, error) {
			return &WhoAsksResp{ID: hc.Self()}, nil
		}),
	}
}

func (g *guest) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.Init(func(hc actor.HandlerCtx) error {
			h, err := Resolve[host](hc, harnessFrom(hc).registry)
			if err != nil {
				return err
			}
			res, err := actor.Request[WhoAsks, WhoAsksResp](hc, h, WhoAsks{})
			if err != nil {
				return err
			}
			g.hostID = res.ID
			return nil
		}),
		actor.HandleRequest[Seen, WhoAsksResp](func(hc actor.HandlerCtx, _ Seen) (*WhoAsksResp, error) {
			return &WhoAsksResp{ID: g.hostID}, nil
		}),
	}
}
