// Package test provides helpers shared by genstage tests.
package test

import "context"

// Batches collects event batches delivered to a consumer stage. Its Consume
// method has the shape of a genstage.ConsumeFunc with empty state.
type Batches[T any] struct {
	C chan []T
}

// NewBatches creates a collector with the given channel buffer.
func NewBatches[T any](buffer int) *Batches[T] {
	return &Batches[T]{C: make(chan []T, buffer)}
}

// Consume forwards the batch to C.
func (b *Batches[T]) Consume(ctx context.Context, events []T, state struct{}) (struct{}, error) {
	select {
	case b.C <- events:
	case <-ctx.Done():
	}
	return state, nil
}
