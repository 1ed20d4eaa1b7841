package genstage

import (
	"context"
	"runtime/debug"
)

// DemandFunc is the processing function bound to a Producer. It is invoked
// only when amount > 0 and must return exactly amount events along with the
// next state. The next state replaces the previous one; it is never mutated
// in place. Returning more events than demanded is a stage fault.
type DemandFunc[S, T any] func(ctx context.Context, amount int, state S) ([]T, S, error)

// TransformFunc is the processing function bound to a Transformer. It maps a
// batch of inputs to a batch of outputs and the next state. Element order
// must be preserved; cardinality need not be. Returning zero outputs is
// valid and forwards nothing downstream.
type TransformFunc[S, I, O any] func(ctx context.Context, events []I, state S) ([]O, S, error)

// ConsumeFunc is the processing function bound to a Consumer. It handles a
// batch of events and returns the next state. Consumers never produce
// output.
type ConsumeFunc[S, T any] func(ctx context.Context, events []T, state S) (S, error)

// Stage is a unit of computation in a pipeline. Each stage runs as a single
// goroutine started by [Pipeline.Run] and communicates only over its
// subscriptions. Stages are created with [NewProducer], [NewTransformer] and
// [NewConsumer].
type Stage interface {
	// Name returns the stage name used in logs and errors.
	Name() string

	run(ctx context.Context, log Logger) error
}

// safeDemand invokes handle, converting a panic into a RecoveryError so the
// fault surfaces as a pipeline failure instead of crashing the process.
func safeDemand[S, T any](ctx context.Context, handle DemandFunc[S, T], amount int, state S) (events []T, next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = state
			err = &RecoveryError{PanicValue: r, StackTrace: string(debug.Stack())}
		}
	}()
	return handle(ctx, amount, state)
}

func safeTransform[S, I, O any](ctx context.Context, handle TransformFunc[S, I, O], batch []I, state S) (events []O, next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = state
			err = &RecoveryError{PanicValue: r, StackTrace: string(debug.Stack())}
		}
	}()
	return handle(ctx, batch, state)
}

func safeConsume[S, T any](ctx context.Context, handle ConsumeFunc[S, T], batch []T, state S) (next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = state
			err = &RecoveryError{PanicValue: r, StackTrace: string(debug.Stack())}
		}
	}()
	return handle(ctx, batch, state)
}
