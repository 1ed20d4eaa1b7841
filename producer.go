package genstage

import (
	"context"
	"fmt"
)

// Producer is a stage with no upstream. It holds an opaque state S and emits
// events of type T only in response to demand arriving on its single outlet
// subscription. The bound [DemandFunc] must return exactly the demanded
// number of events; the returned state replaces the held state on every
// invocation.
//
// A processing error or panic terminates the stage and fails the pipeline.
type Producer[S, T any] struct {
	name   string
	handle DemandFunc[S, T]
	state  S
	out    *Subscription[T]
}

// NewProducer creates a producer stage with the given name, initial state
// and processing function. Subscribe a downstream stage to it before running
// the pipeline.
func NewProducer[S, T any](name string, initial S, handle DemandFunc[S, T]) *Producer[S, T] {
	return &Producer[S, T]{
		name:   name,
		handle: handle,
		state:  initial,
	}
}

// Name returns the stage name.
func (p *Producer[S, T]) Name() string {
	return p.name
}

func (p *Producer[S, T]) attachOutlet(sub *Subscription[T]) error {
	if p.out != nil {
		return fmt.Errorf("%w: producer %q outlet", ErrAlreadySubscribed, p.name)
	}
	p.out = sub
	return nil
}

func (p *Producer[S, T]) run(ctx context.Context, log Logger) error {
	if p.out == nil {
		return fmt.Errorf("%w: producer %q has no subscriber", ErrNotSubscribed, p.name)
	}

	state := p.state
	for {
		select {
		case <-ctx.Done():
			return nil
		case amount := <-p.out.demand:
			if amount <= 0 {
				continue
			}
			events, next, err := safeDemand(ctx, p.handle, amount, state)
			if err != nil {
				// An error during shutdown is cancellation, not a fault.
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			state = next

			if len(events) > amount {
				return fmt.Errorf("%w: returned %d events for demand %d",
					ErrExcessEvents, len(events), amount)
			}
			log.Debug("GENSTAGE: Produce", "stage", p.name, "demand", amount, "events", len(events))

			if len(events) == 0 {
				continue
			}
			select {
			case p.out.events <- events:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
