package genstage_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	. "github.com/fxsml/genstage"
	"github.com/fxsml/genstage/internal/test"
)

func TestSubscribe_Accessors(t *testing.T) {
	source := NewProducer("source", 0, counting())
	sink := test.NewBatches[int](1)
	consumer := NewConsumer("sink", struct{}{}, sink.Consume)

	sub, err := Subscribe[int](consumer, source, WithMaxDemand(4))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.ID() == uuid.Nil {
		t.Error("expected a subscription identity")
	}
	if sub.MaxDemand() != 4 {
		t.Errorf("expected max demand 4, got %d", sub.MaxDemand())
	}
}

func TestSubscribe_UnboundedByDefault(t *testing.T) {
	source := NewProducer("source", 0, counting())
	sink := test.NewBatches[int](1)
	consumer := NewConsumer("sink", struct{}{}, sink.Consume)

	sub, err := Subscribe[int](consumer, source)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.MaxDemand() != 0 {
		t.Errorf("expected unbounded edge, got max demand %d", sub.MaxDemand())
	}
}

func TestSubscribe_ProducerOutletOccupied(t *testing.T) {
	source := NewProducer("source", 0, counting())
	a := test.NewBatches[int](1)
	b := test.NewBatches[int](1)

	if _, err := Subscribe[int](NewConsumer("a", struct{}{}, a.Consume), source); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	_, err := Subscribe[int](NewConsumer("b", struct{}{}, b.Consume), source)
	if !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
}

func TestSubscribe_TransformerSidesOccupied(t *testing.T) {
	relay := NewTransformer("relay", struct{}{}, identity[int]())
	sourceA := NewProducer("a", 0, counting())
	sourceB := NewProducer("b", 0, counting())
	sinkA := test.NewBatches[int](1)
	sinkB := test.NewBatches[int](1)

	if _, err := Subscribe[int](relay, sourceA); err != nil {
		t.Fatalf("subscribe inlet: %v", err)
	}
	if _, err := Subscribe[int](relay, sourceB); !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed for inlet, got %v", err)
	}

	if _, err := Subscribe[int](NewConsumer("a", struct{}{}, sinkA.Consume), relay); err != nil {
		t.Fatalf("subscribe outlet: %v", err)
	}
	if _, err := Subscribe[int](NewConsumer("b", struct{}{}, sinkB.Consume), relay); !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed for outlet, got %v", err)
	}
}

func TestSubscribe_ConsumerInletOccupied(t *testing.T) {
	sink := test.NewBatches[int](1)
	consumer := NewConsumer("sink", struct{}{}, sink.Consume)
	if _, err := Subscribe[int](consumer, NewProducer("a", 0, counting())); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := Subscribe[int](consumer, NewProducer("b", 0, counting())); !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
}
