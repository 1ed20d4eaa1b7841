package genstage

import (
	"context"
	"fmt"
	"time"
)

type consumerConfig struct {
	demand   int
	interval time.Duration
}

// ConsumerOption configures a Consumer created by [NewConsumer].
type ConsumerOption func(*consumerConfig)

// WithDemand sets the quantity requested on every pulse. The default is 1.
// The quantity is clamped to the inlet edge's max outstanding demand.
func WithDemand(amount int) ConsumerOption {
	return func(cfg *consumerConfig) {
		if amount > 0 {
			cfg.demand = amount
		}
	}
}

// WithInterval sets the inter-pulse delay: after handling a batch the
// consumer waits this long before issuing the next demand pulse. The default
// is 0, pulsing again immediately.
func WithInterval(interval time.Duration) ConsumerOption {
	return func(cfg *consumerConfig) {
		if interval > 0 {
			cfg.interval = interval
		}
	}
}

// Consumer is a terminal stage with no downstream. It is the pipeline's
// heartbeat: on every pulse it requests a fixed quantity from its inlet
// subscription, handles whatever batch arrives with the bound [ConsumeFunc],
// waits the configured interval, then pulses again. Without its demand no
// upstream stage does any work.
type Consumer[S, T any] struct {
	name   string
	handle ConsumeFunc[S, T]
	state  S
	cfg    consumerConfig
	in     *Subscription[T]
}

// NewConsumer creates a consumer stage with the given name, initial state
// and processing function. Subscribe it to an upstream source before running
// the pipeline.
func NewConsumer[S, T any](name string, initial S, handle ConsumeFunc[S, T], opts ...ConsumerOption) *Consumer[S, T] {
	cfg := consumerConfig{demand: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Consumer[S, T]{
		name:   name,
		handle: handle,
		state:  initial,
		cfg:    cfg,
	}
}

// Name returns the stage name.
func (c *Consumer[S, T]) Name() string {
	return c.name
}

func (c *Consumer[S, T]) attachInlet(sub *Subscription[T]) error {
	if c.in != nil {
		return fmt.Errorf("%w: consumer %q inlet", ErrAlreadySubscribed, c.name)
	}
	c.in = sub
	return nil
}

func (c *Consumer[S, T]) run(ctx context.Context, log Logger) error {
	if c.in == nil {
		return fmt.Errorf("%w: consumer %q has no upstream", ErrNotSubscribed, c.name)
	}

	amount := c.cfg.demand
	if max := c.in.maxDemand; max > 0 && amount > max {
		amount = max
	}

	state := c.state
	for {
		select {
		case c.in.demand <- amount:
		case <-ctx.Done():
			return nil
		}
		log.Debug("GENSTAGE: Pulse", "stage", c.name, "demand", amount)

		var batch []T
		select {
		case batch = <-c.in.events:
		case <-ctx.Done():
			return nil
		}

		next, err := safeConsume(ctx, c.handle, batch, state)
		if err != nil {
			// An error during shutdown is cancellation, not a fault.
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		state = next

		if c.cfg.interval > 0 {
			timer := time.NewTimer(c.cfg.interval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil
			}
		}
	}
}
