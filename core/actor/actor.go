package actor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	// ErrStopped is returned when sending to an actor that is no longer running.
	ErrStopped = errors.New("actor stopped")
	// ErrAlreadyStarted is returned when Start is called twice for one context.
	ErrAlreadyStarted = errors.New("actor already started")
	// ErrReceiverMismatch is returned when a context is started with a receiver
	// obtained from a different NewContext call.
	ErrReceiverMismatch = errors.New("receiver does not belong to context")
	// ErrPanicked wraps a value recovered from a panicking handler.
	ErrPanicked = errors.New("actor handler panicked")
)

type (
	OnPanic func(recovered any, stack []byte, msg any)

	// Actor is the capability contract of types run by the runtime. Handlers
	// is called once, when the instance is started.
	Actor interface {
		Handlers() []HandlerRegistration
	}

	// Ref is the untyped view of a running actor.
	Ref interface {
		ID() string
		Send(ctx context.Context, msg Envelope) error
		Pause() error
		Resume() error
		Step() error
		Done() <-chan struct{}
	}
)

// ---- control messages (internal) ----

type ctrlKind int

const (
	ctrlPause ctrlKind = iota
	ctrlResume
	ctrlEnableStep
	ctrlStep
	ctrlStop
)

type ctrlMsg struct {
	kind ctrlKind
}

type Options struct {
	// ID names the actor. A random id is generated when empty.
	ID          string
	MailboxSize int
	ControlSize int
	Context     context.Context
	Logger      *slog.Logger
	OnPanic     OnPanic
	Metrics     ActorMetrics
	// MaxConcurrentTasks caps the number of tasks run via HandlerCtx.Schedule.
	// Defaults to 32.
	MaxConcurrentTasks int
}

func (opt Options) withDefaults() Options {
	if opt.ID == "" {
		opt.ID = gonanoid.Must(10)
	}
	if opt.MailboxSize <= 0 {
		opt.MailboxSize = 1024
	}
	if opt.ControlSize <= 0 {
		opt.ControlSize = 16
	}
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NopActorMetrics()
	}
	if opt.MaxConcurrentTasks <= 0 {
		opt.MaxConcurrentTasks = 32
	}
	if opt.OnPanic == nil {
		log := opt.Logger
		opt.OnPanic = func(recovered any, stack []byte, msg any) {
			log.Error("actor panicked", slog.Any("recovered", recovered), slog.String("stack", string(stack)), slog.Any("msg", msg))
		}
	}
	return opt
}

type cellState int

const (
	cellNew cellState = iota
	cellRunning
	cellStopped
)

// cell is the runtime side of one actor: mailbox, control channel and
// lifecycle. Addr, Context and Receiver all point at the same cell.
type cell struct {
	id  string
	ctx context.Context
	log *slog.Logger

	cancel context.CancelFunc

	mailbox chan Envelope
	control chan ctrlMsg

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// mu guards state; senders hold it shared while enqueueing so that no
	// envelope slips in after the final mailbox drain.
	mu    sync.RWMutex
	state cellState

	service  bool
	maxTasks int
	onPanic  OnPanic
	metrics  ActorMetrics
}

func newCell(opt Options) *cell {
	opt = opt.withDefaults()
	ctx, cancel := context.WithCancel(opt.Context)
	return &cell{
		id:       opt.ID,
		ctx:      ctx,
		cancel:   cancel,
		log:      opt.Logger.With(slog.String("actor", opt.ID)),
		mailbox:  make(chan Envelope, opt.MailboxSize),
		control:  make(chan ctrlMsg, opt.ControlSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		maxTasks: opt.MaxConcurrentTasks,
		onPanic:  opt.OnPanic,
		metrics:  opt.Metrics,
	}
}

// New creates an actor for a raw handler and starts it. Initialization
// errors are logged and leave the actor stopped.
func New(opt Options, handler RawHandler) Ref {
	c := newCell(opt)
	if err := c.start(context.Background(), handler, false); err != nil {
		c.log.Error("actor failed to start", slog.Any("error", err))
	}
	return Addr[Actor]{c: c}
}

// start runs the handler's init on a fresh goroutine and, if it succeeds,
// keeps that goroutine as the message loop. It returns once init completed
// or ctx ended; in the latter case init keeps running.
func (c *cell) start(ctx context.Context, h RawHandler, service bool) error {
	c.mu.Lock()
	switch c.state {
	case cellRunning:
		c.mu.Unlock()
		return ErrAlreadyStarted
	case cellStopped:
		c.mu.Unlock()
		return ErrStopped
	}
	c.state = cellRunning
	c.service = service
	c.mu.Unlock()

	if service {
		c.log = c.log.With(slog.Bool("singleton", true))
	}

	initErr := make(chan error, 1)
	go c.loop(h, initErr)
	select {
	case err := <-initErr:
		if err != nil {
			<-c.done
			return fmt.Errorf("start actor %s: %w", c.id, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("start actor %s: %w", c.id, ctx.Err())
	}
}

func (c *cell) isService() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.service
}

// send enqueues a message (blocking until enqueued, ctx canceled, or actor stopped).
func (c *cell) send(ctx context.Context, e Envelope) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == cellStopped {
		return ErrStopped
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("send failed: %w", ctx.Err())
	case <-c.stop:
		return ErrStopped
	case c.mailbox <- e:
		c.metrics.MailboxDepth(c.id, len(c.mailbox))
		return nil
	}
}

// trySend attempts a non-blocking enqueue.
func (c *cell) trySend(e Envelope) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == cellStopped {
		return false
	}
	select {
	case <-c.stop:
		return false
	case c.mailbox <- e:
		return true
	default:
		return false
	}
}

func (c *cell) sendCtrl(k ctrlKind) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == cellStopped {
		return ErrStopped
	}
	select {
	case <-c.stop:
		return ErrStopped
	case c.control <- ctrlMsg{kind: k}:
		return nil
	}
}

// shutdown requests shutdown and waits for completion. It is idempotent and
// also releases contexts that were never started.
func (c *cell) shutdown() {
	c.stopOnce.Do(func() { close(c.stop) })

	c.mu.Lock()
	neverStarted := c.state == cellNew
	if neverStarted {
		c.state = cellStopped
	}
	c.mu.Unlock()

	if neverStarted {
		c.finish(nil)
	}
	<-c.done
}

// finish marks the cell stopped, fails every queued envelope and closes done.
func (c *cell) finish(sched Scheduler) {
	c.stopOnce.Do(func() { close(c.stop) })

	c.mu.Lock()
	c.state = cellStopped
	c.mu.Unlock()

drain:
	for {
		select {
		case e := <-c.mailbox:
			if e.Reply != nil {
				e.Reply <- Reply{Error: ErrStopped}
			}
		default:
			break drain
		}
	}
	c.metrics.MailboxDepth(c.id, 0)

	if sched != nil {
		sched.Wait()
	}
	c.cancel()
	close(c.done)
}

func (c *cell) loop(h RawHandler, initErr chan<- error) {
	hc := &handlerCtx{
		Context: c.ctx,
		log:     c.log,
		self:    c.id,
		request: func(ctx context.Context, req any) (any, error) {
			data, err := json.Marshal(req)
			if err != nil {
				return nil, err
			}
			return RawRequest(ctx, Addr[Actor]{c: c}, msgTypeOf(req), data)
		},
		sched: NewSchedulerWithMetrics(c.maxTasks, c.ctx, c.id, c.metrics),
	}
	defer c.finish(hc.sched)

	if err := h.InitHandler(hc); err != nil {
		initErr <- err
		return
	}
	initErr <- nil
	c.log.Debug("actor started")

	// execution state lives only in this goroutine
	var (
		paused   = false
		stepMode = false
		permit   = 1 // when >0, actor may process one message; in run mode we auto-renew
	)

	// applyCtrl returns false when the loop must exit.
	applyCtrl := func(m ctrlMsg) bool {
		switch m.kind {
		case ctrlStop:
			return false
		case ctrlPause:
			paused = true
			permit = 0
		case ctrlResume:
			paused = false
			stepMode = false
			if permit == 0 {
				permit = 1
			}
		case ctrlEnableStep:
			stepMode = true
			paused = true
			permit = 0
		case ctrlStep:
			permit++
		}
		return true
	}

	// drainControl applies all pending control messages (priority).
	drainControl := func() bool {
		for {
			select {
			case <-c.stop:
				return false
			case m := <-c.control:
				if !applyCtrl(m) {
					return false
				}
			default:
				return true
			}
		}
	}

	for {
		if !drainControl() {
			return
		}

		// If no permit, block until a control message (or stop).
		if permit <= 0 {
			select {
			case <-c.stop:
				return
			case <-hc.Done():
				return
			case m := <-c.control:
				if !applyCtrl(m) {
					return
				}
			}
			continue
		}

		select {
		case <-c.stop:
			return
		case <-hc.Done():
			return
		case m := <-c.control:
			// preempt: apply control, do not consume permit
			if !applyCtrl(m) {
				return
			}
		case msg := <-c.mailbox:
			c.metrics.MailboxDepth(c.id, len(c.mailbox))
			permit--
			res, err := c.handle(hc, h, msg)
			if msg.Reply != nil {
				msg.Reply <- Reply{Result: res, Error: err}
			}
			// Auto-renew permit in continuous mode.
			if !paused && !stepMode {
				permit++
			}
		}
	}
}

// handle calls the handler with crash containment.
func (c *cell) handle(hc HandlerCtx, h RawHandler, msg Envelope) (res any, err error) {
	defer c.metrics.MessageDuration(msg.Type).ObserveDuration()
	defer func() {
		if r := recover(); r != nil {
			c.metrics.MessagePanic(msg.Type)
			c.onPanic(r, debug.Stack(), msg.Type)
			res, err = nil, fmt.Errorf("%w: %v", ErrPanicked, r)
		}
		c.metrics.MessageProcessed(msg.Type, err == nil)
	}()
	return h.HandleMessage(hc, msg.Type, msg.Data)
}
