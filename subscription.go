package genstage

import (
	"github.com/google/uuid"
)

// defaultDemandBuffer bounds the demand channel of an edge with no
// max-outstanding-demand cap. Demand senders coalesce before sending, so the
// number of in-flight demand messages stays far below this in practice.
const defaultDemandBuffer = 64

// Source is the upstream end of a subscription: a stage that can emit events
// of type T. Producers and Transformers are Sources.
type Source[T any] interface {
	attachOutlet(sub *Subscription[T]) error
}

// Sink is the downstream end of a subscription: a stage that can receive
// events of type T. Transformers and Consumers are Sinks.
type Sink[T any] interface {
	attachInlet(sub *Subscription[T]) error
}

// Subscription is a directed edge linking exactly one downstream stage to
// exactly one upstream stage. Demand flows upstream as integer quantities;
// event batches flow downstream, never exceeding the outstanding demand.
// Batches on one edge are delivered in the order produced.
//
// A Subscription is created once by [Subscribe] and is immutable thereafter.
type Subscription[T any] struct {
	id        uuid.UUID
	maxDemand int
	demand    chan int
	events    chan []T
}

// ID returns the unique identity of the edge.
func (s *Subscription[T]) ID() uuid.UUID {
	return s.id
}

// MaxDemand returns the edge's maximum outstanding demand, or 0 when the
// edge is unbounded.
func (s *Subscription[T]) MaxDemand() int {
	return s.maxDemand
}

type subscribeConfig struct {
	maxDemand int
	buffer    int
}

// SubscribeOption configures a Subscription created by [Subscribe].
type SubscribeOption func(*subscribeConfig)

// WithMaxDemand caps the outstanding demand a downstream stage may hold
// toward its upstream on this edge. The downstream side never lets its
// unfulfilled demand exceed the cap. Zero or negative values leave the edge
// unbounded, which is the default.
func WithMaxDemand(max int) SubscribeOption {
	return func(cfg *subscribeConfig) {
		if max > 0 {
			cfg.maxDemand = max
		}
	}
}

// WithEventBuffer sets the event channel buffer size for the edge.
// The default is 0, an unbuffered handoff.
func WithEventBuffer(buffer int) SubscribeOption {
	return func(cfg *subscribeConfig) {
		if buffer > 0 {
			cfg.buffer = buffer
		}
	}
}

// Subscribe wires the downstream stage to the upstream stage with a new
// Subscription and returns it. Each stage side accepts exactly one edge;
// subscribing an occupied side returns ErrAlreadySubscribed.
//
// Subscriptions must be established before [Pipeline.Run] starts the stages.
// Wire them consumer-side to producer-side so demand can flow as soon as the
// pipeline runs.
func Subscribe[T any](down Sink[T], up Source[T], opts ...SubscribeOption) (*Subscription[T], error) {
	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	demandBuffer := cfg.maxDemand
	if demandBuffer == 0 {
		demandBuffer = defaultDemandBuffer
	}

	sub := &Subscription[T]{
		id:        uuid.New(),
		maxDemand: cfg.maxDemand,
		demand:    make(chan int, demandBuffer),
		events:    make(chan []T, cfg.buffer),
	}

	if err := up.attachOutlet(sub); err != nil {
		return nil, err
	}
	if err := down.attachInlet(sub); err != nil {
		return nil, err
	}
	return sub, nil
}
