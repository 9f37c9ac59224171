// Package perkey provides a scheduler that serializes work per key
// while allowing work for different keys to execute concurrently.
//
// Every key owns one worker goroutine for the scheduler's whole life. A worker
// may own a state value of type S, created by the worker itself before its
// first task and released after its last one; tasks of that key receive the
// state and no other goroutine ever sees it.
package perkey

import (
	"context"
	"sync"
)

// Option configures a Scheduler.
type Option func(*config)

type config struct {
	bufferSize int
}

// WithBufferSize sets the task buffer size per worker (default: 64).
func WithBufferSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// StateFunc creates the state owned by the worker of key. The returned
// release func, if any, runs on the worker after its last task.
type StateFunc[K comparable, S any] func(key K) (state S, release func())

// Scheduler runs tasks such that for any given key K, tasks are executed
// sequentially, in submission order, on the same goroutine.
// Tasks for *different* keys can proceed in parallel.
type Scheduler[K comparable, S any] struct {
	mu         sync.Mutex
	workers    map[K]*worker[S]
	closed     bool
	inflight   sync.WaitGroup // tracks in-flight Do operations
	running    sync.WaitGroup // tracks worker goroutines
	bufferSize int
	newState   StateFunc[K, S]
}

type worker[S any] struct {
	tasks chan *task[S]
}

type task[S any] struct {
	fn   func(S) error
	done chan error
}

// New creates a Scheduler whose workers own no state.
func New[K comparable](opts ...Option) *Scheduler[K, struct{}] {
	return NewWithState[K, struct{}](nil, opts...)
}

// NewWithState creates a Scheduler whose workers own the state built by
// newState. A nil newState leaves every worker with the zero S.
func NewWithState[K comparable, S any](newState StateFunc[K, S], opts ...Option) *Scheduler[K, S] {
	cfg := &config{bufferSize: 64}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Scheduler[K, S]{
		workers:    make(map[K]*worker[S]),
		bufferSize: cfg.bufferSize,
		newState:   newState,
	}
}

// Do schedules fn to run for the given key.
// It blocks until fn finishes and returns its error.
// All fn calls for the same key are executed sequentially.
func (s *Scheduler[K, S]) Do(key K, fn func() error) error {
	return s.DoContext(context.Background(), key, fn)
}

// DoContext is like Do but respects context cancellation.
// If the context is cancelled while waiting to enqueue or waiting for
// completion, it returns the context error. Note that if a task is already
// enqueued, it will still execute even if the caller's context is cancelled.
func (s *Scheduler[K, S]) DoContext(ctx context.Context, key K, fn func() error) error {
	return s.With(ctx, key, func(S) error { return fn() })
}

// With is like DoContext but hands fn the state owned by key's worker.
func (s *Scheduler[K, S]) With(ctx context.Context, key K, fn func(S) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSchedulerClosed
	}
	s.inflight.Add(1)
	w := s.getOrCreateWorkerLocked(key)
	s.mu.Unlock()
	defer s.inflight.Done()

	t := &task[S]{
		fn:   fn,
		done: make(chan error, 1),
	}

	select {
	case w.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		// Already queued; it still runs, we just stop waiting.
		return ctx.Err()
	}
}

// Keys returns the keys that currently own a worker, in no particular order.
func (s *Scheduler[K, S]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]K, 0, len(s.workers))
	for k := range s.workers {
		keys = append(keys, k)
	}
	return keys
}

// Close stops accepting new tasks and shuts down all workers.
// It waits for in-flight Do operations to finish enqueueing, then for every
// worker to drain its queue and release its state.
func (s *Scheduler[K, S]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	// No sends may race with the close below.
	s.inflight.Wait()

	s.mu.Lock()
	for _, w := range s.workers {
		close(w.tasks)
	}
	s.workers = nil
	s.mu.Unlock()

	s.running.Wait()
}

func (s *Scheduler[K, S]) getOrCreateWorkerLocked(key K) *worker[S] {
	w, ok := s.workers[key]
	if ok {
		return w
	}

	w = &worker[S]{
		tasks: make(chan *task[S], s.bufferSize),
	}
	s.workers[key] = w
	s.running.Add(1)
	go s.runWorker(key, w)

	return w
}

// runWorker processes tasks sequentially for a single key.
func (s *Scheduler[K, S]) runWorker(key K, w *worker[S]) {
	defer s.running.Done()

	var (
		state   S
		release func()
	)
	if s.newState != nil {
		state, release = s.newState(key)
	}
	if release != nil {
		defer release()
	}

	for t := range w.tasks {
		t.done <- t.fn(state)
	}
}

// ----- Errors -----

// ErrSchedulerClosed is returned when Do is called on a closed scheduler.
var ErrSchedulerClosed = &SchedulerError{"scheduler is closed"}

// SchedulerError is a simple error implementation.
type SchedulerError struct {
	msg string
}

func (e *SchedulerError) Error() string { return e.msg }
