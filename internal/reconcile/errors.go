package reconcile

import (
	"errors"
	"fmt"
)

// ErrInconsistent is wrapped by every error reporting that the outputs of a clause
// cannot be ordered against its call trace.
var ErrInconsistent = errors.New("outputs inconsistent with call trace")

// MismatchError is returned when the next unconsumed event or transfer is not
// the one the trace node requires.
type MismatchError struct {
	Node   string
	Kind   Kind
	Index  int
	Reason string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s node: %s %d mismatch: %s", e.Node, e.Kind, e.Index, e.Reason)
}

func (e *MismatchError) Unwrap() error {
	return ErrInconsistent
}

// NewMismatchError creates a new MismatchError.
func NewMismatchError(node string, kind Kind, index int, reason string) error {
	return &MismatchError{
		Node:   node,
		Kind:   kind,
		Index:  index,
		Reason: reason,
	}
}

// UnknownNodeError is returned for a trace node type the reconciler does not know.
type UnknownNodeError struct {
	Type string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown trace node %q", e.Type)
}

func (e *UnknownNodeError) Unwrap() error {
	return ErrInconsistent
}

// NewUnknownNodeError creates a new UnknownNodeError.
func NewUnknownNodeError(typ string) error {
	return &UnknownNodeError{Type: typ}
}

// IndexMismatchError is returned when the walk ends with events or transfers left unconsumed.
type IndexMismatchError struct {
	Events            int
	EventsConsumed    int
	Transfers         int
	TransfersConsumed int
}

func (e *IndexMismatchError) Error() string {
	return fmt.Sprintf("index mismatch: consumed %d/%d events and %d/%d transfers",
		e.EventsConsumed, e.Events, e.TransfersConsumed, e.Transfers)
}

func (e *IndexMismatchError) Unwrap() error {
	return ErrInconsistent
}

// NewIndexMismatchError creates a new IndexMismatchError.
func NewIndexMismatchError(events, eventsConsumed, transfers, transfersConsumed int) error {
	return &IndexMismatchError{
		Events:            events,
		EventsConsumed:    eventsConsumed,
		Transfers:         transfers,
		TransfersConsumed: transfersConsumed,
	}
}
