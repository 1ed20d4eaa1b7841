package genstage

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted indicates that Run was called on a pipeline that is
	// already running.
	ErrAlreadyStarted = errors.New("genstage: pipeline already started")
	// ErrAlreadySubscribed indicates that a stage side already carries a
	// subscription. The chain is linear: one inlet and one outlet per stage.
	ErrAlreadySubscribed = errors.New("genstage: stage already subscribed")
	// ErrNotSubscribed indicates that a stage was started without the
	// subscriptions its role requires.
	ErrNotSubscribed = errors.New("genstage: stage not subscribed")
	// ErrExcessEvents indicates that a producer returned more events than
	// the demand it was asked to satisfy.
	ErrExcessEvents = errors.New("genstage: events exceed demand")
)

// RecoveryError wraps a panic raised inside a stage processing function with
// the stack trace captured at the point of panic. It surfaces from
// [Pipeline.Run] like any other stage failure.
type RecoveryError struct {
	// PanicValue is the original value that was passed to panic().
	PanicValue any
	// StackTrace contains the full stack trace at the point of panic.
	StackTrace string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("genstage: panic recovered: %v", e.PanicValue)
}
