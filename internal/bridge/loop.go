// Package bridge runs commands on a single owner goroutine that holds
// state no other goroutine may touch.
//
// A Loop owns a value S (the native state). Callers reach it only through
// commands: Sync blocks for a typed result, Async queues fire-and-forget
// work. Both share one FIFO queue, so commands run in submission order.
// A command must not submit a Sync command to its own loop.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/reclaim/launchers/internal/bridge"

var (
	// ErrClosed is returned for commands submitted after Close.
	ErrClosed = errors.New("bridge: loop closed")

	// ErrPanic wraps a panic raised by a command.
	ErrPanic = errors.New("bridge: command panicked")
)

type options struct {
	lockThread bool
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Loop.
type Option func(*options)

// WithLockedThread pins the owner goroutine to one OS thread, for state
// that has OS thread affinity such as GUI toolkits.
func WithLockedThread() Option {
	return func(o *options) { o.lockThread = true }
}

// WithLogger sets the logger used for failed asynchronous commands.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp.Tracer(tracerName) }
}

type command[S any] struct {
	name string
	ctx  context.Context
	run  func(ctx context.Context, state S)
}

// Loop serializes commands onto the goroutine that owns state.
type Loop[S any] struct {
	state  S
	logger *slog.Logger
	tracer trace.Tracer

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []command[S]
	closed bool
	done   chan struct{}
}

// New starts the owner goroutine for state.
func New[S any](state S, opts ...Option) *Loop[S] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	l := &Loop[S]{
		state:  state,
		logger: o.logger,
		tracer: o.tracer,
		done:   make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)

	go l.run(o.lockThread)
	return l
}

func (l *Loop[S]) run(lockThread bool) {
	if lockThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	defer close(l.done)

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		cmd := l.queue[0]
		l.queue[0] = command[S]{}
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.exec(cmd)
	}
}

// exec runs one command inside its span.
func (l *Loop[S]) exec(cmd command[S]) {
	ctx, span := l.tracer.Start(cmd.ctx, cmd.name, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	cmd.run(ctx, l.state)
}

func (l *Loop[S]) submit(cmd command[S]) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.queue = append(l.queue, cmd)
	l.cond.Signal()
	return nil
}

// Close stops accepting commands, runs the ones already queued and waits
// for the owner goroutine to exit. It is safe to call more than once.
func (l *Loop[S]) Close() error {
	l.mu.Lock()
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()

	<-l.done
	return nil
}

// protect runs fn and converts a panic into an error wrapping ErrPanic.
func protect[S, T any](name string, state S, fn func(S) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v\n%s", ErrPanic, name, r, debug.Stack())
		}
	}()
	return fn(state)
}

type result[T any] struct {
	val T
	err error
}

// Sync runs fn on the loop and waits for its result. An error or panic
// from fn is returned to the caller; the loop keeps serving. If ctx ends
// first Sync returns ctx.Err(), but fn still runs when its turn comes.
func Sync[S, T any](ctx context.Context, l *Loop[S], name string, fn func(S) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	reply := make(chan result[T], 1)
	err := l.submit(command[S]{
		name: name,
		ctx:  ctx,
		run: func(ctx context.Context, state S) {
			v, err := protect(name, state, fn)
			if err != nil {
				span := trace.SpanFromContext(ctx)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			reply <- result[T]{val: v, err: err}
		},
	})
	if err != nil {
		return zero, err
	}

	select {
	case r := <-reply:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Async queues fn and returns immediately. Errors and panics from fn are
// logged and dropped. The only error returned is ErrClosed.
func (l *Loop[S]) Async(name string, fn func(S) error) error {
	return l.submit(command[S]{
		name: name,
		ctx:  context.Background(),
		run: func(ctx context.Context, state S) {
			_, err := protect(name, state, func(s S) (struct{}, error) {
				return struct{}{}, fn(s)
			})
			if err == nil {
				return
			}
			span := trace.SpanFromContext(ctx)
			span.SetAttributes(attribute.Bool("bridge.async", true))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			l.logger.Warn("async command failed", "command", name, "error", err)
		},
	})
}
