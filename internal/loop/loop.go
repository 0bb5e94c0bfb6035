// Package loop implements the single cooperative thread that owns all note
// model and panel state.
//
// Concurrency model: one goroutine (the one calling Run) executes every
// posted task in order. Timers, OS callbacks and request handlers never touch
// state directly; they post closures here.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned when a task is submitted after the loop exited.
var ErrStopped = errors.New("loop: stopped")

// Loop is a serial task queue. The queue is unbounded so Post never blocks,
// including when a running task posts follow-up work.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
	logger  *slog.Logger
}

// New creates a loop. capacity presizes the queue.
func New(capacity int, logger *slog.Logger) *Loop {
	if capacity <= 0 {
		capacity = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		queue:   make([]func(), 0, capacity),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Run executes tasks until ctx is cancelled. Tasks still queued at that
// point are drained before Run returns; posts made while draining are
// rejected.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closed = true
			rest := l.queue
			l.queue = nil
			l.mu.Unlock()
			for _, task := range rest {
				l.exec(task)
			}
			return nil
		case <-l.wake:
			for {
				task, ok := l.next()
				if !ok {
					break
				}
				l.exec(task)
				if ctx.Err() != nil {
					break
				}
			}
			// Leftovers are picked up by the next wake or the drain above.
			if l.pending() {
				l.signal()
			}
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) > 0
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop: task panicked", slog.String("panic", fmt.Sprint(r)))
		}
	}()
	task()
}

// Post queues fn for execution and reports whether it was accepted. It
// never blocks and is safe to call from a task running on the loop.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.signal()
	return true
}

// Do runs fn on the loop and waits for its result. It must not be called
// from a task running on the loop.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("loop: task panicked: %v", r)
			}
		}()
		done <- fn()
	}
	if !l.Post(task) {
		return ErrStopped
	}
	select {
	case err := <-done:
		return err
	case <-l.stopped:
		select {
		case err := <-done:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Timer is a pending AfterFunc task.
type Timer interface {
	// Stop prevents the task from being posted. It reports whether the
	// timer was stopped before firing.
	Stop() bool
}

// AfterFunc posts fn onto the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}
