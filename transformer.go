package genstage

import (
	"context"
	"fmt"
)

// Transformer is a producer-consumer stage: it receives event batches of
// type I on its inlet, applies the bound [TransformFunc], and forwards the
// resulting batches of type O on its outlet. Demand received from downstream
// is relayed upstream one-to-one, bounded by the inlet edge's maximum
// outstanding demand; demand that cannot be relayed because of the cap is
// held pending and flushed as events arrive.
//
// Element order is preserved across the stage. A transformation yielding
// zero events forwards nothing; the demand that produced the dropped batch
// is already spent upstream, so the downstream stage sees no delivery for
// that pulse and must issue new demand before anything further flows.
type Transformer[S, I, O any] struct {
	name   string
	handle TransformFunc[S, I, O]
	state  S
	in     *Subscription[I]
	out    *Subscription[O]
}

// NewTransformer creates a transformer stage with the given name, initial
// state and processing function. Subscribe it downstream of a source and
// upstream of a sink before running the pipeline.
func NewTransformer[S, I, O any](name string, initial S, handle TransformFunc[S, I, O]) *Transformer[S, I, O] {
	return &Transformer[S, I, O]{
		name:   name,
		handle: handle,
		state:  initial,
	}
}

// Name returns the stage name.
func (t *Transformer[S, I, O]) Name() string {
	return t.name
}

func (t *Transformer[S, I, O]) attachInlet(sub *Subscription[I]) error {
	if t.in != nil {
		return fmt.Errorf("%w: transformer %q inlet", ErrAlreadySubscribed, t.name)
	}
	t.in = sub
	return nil
}

func (t *Transformer[S, I, O]) attachOutlet(sub *Subscription[O]) error {
	if t.out != nil {
		return fmt.Errorf("%w: transformer %q outlet", ErrAlreadySubscribed, t.name)
	}
	t.out = sub
	return nil
}

func (t *Transformer[S, I, O]) run(ctx context.Context, log Logger) error {
	if t.in == nil {
		return fmt.Errorf("%w: transformer %q has no upstream", ErrNotSubscribed, t.name)
	}
	if t.out == nil {
		return fmt.Errorf("%w: transformer %q has no subscriber", ErrNotSubscribed, t.name)
	}

	state := t.state
	// pending is demand received from downstream but not yet relayed;
	// outstanding is demand relayed upstream but not yet fulfilled.
	// Invariant: outstanding never exceeds the inlet's max demand.
	var pending, outstanding int
	for {
		for pending > 0 {
			amount := pending
			if max := t.in.maxDemand; max > 0 {
				if outstanding >= max {
					break
				}
				if outstanding+amount > max {
					amount = max - outstanding
				}
			}
			select {
			case t.in.demand <- amount:
				pending -= amount
				outstanding += amount
				log.Debug("GENSTAGE: Relay demand",
					"stage", t.name, "amount", amount, "outstanding", outstanding, "pending", pending)
			case <-ctx.Done():
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case amount := <-t.out.demand:
			if amount > 0 {
				pending += amount
			}
		case batch := <-t.in.events:
			outstanding -= len(batch)
			if outstanding < 0 {
				outstanding = 0
			}
			events, next, err := safeTransform(ctx, t.handle, batch, state)
			if err != nil {
				// An error during shutdown is cancellation, not a fault.
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			state = next

			log.Debug("GENSTAGE: Transform", "stage", t.name, "in", len(batch), "out", len(events))
			if len(events) == 0 {
				continue
			}
			select {
			case t.out.events <- events:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
