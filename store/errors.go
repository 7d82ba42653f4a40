package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSubState is matched by every InvalidSubStateError.
	ErrInvalidSubState = errors.New("universal-model: not a sub-state or selector")

	// ErrDuplicateName is returned when a sub-state or selector name is
	// already taken in the store.
	ErrDuplicateName = errors.New("universal-model: duplicate name")

	// ErrNilDelivery is returned when a consumer registers without a way to
	// receive its batches.
	ErrNilDelivery = errors.New("universal-model: nil delivery")

	ErrUnknownConsumer = errors.New("universal-model: unknown consumer")
)

// InvalidSubStateError reports an item that cannot be watched. It is always
// returned synchronously by the registration call that received the item.
type InvalidSubStateError struct {
	// Position is the index of the item in the registration call, or -1 when
	// the item was added to the state container by name.
	Position int
	Name     string
	Reason   string
}

func (e *InvalidSubStateError) Error() string {
	where := e.Name
	if e.Position >= 0 {
		where = fmt.Sprintf("item %d", e.Position)
		if e.Name != "" {
			where += fmt.Sprintf(" (%s)", e.Name)
		}
	}
	return fmt.Sprintf("universal-model: %s is not a sub-state: %s", where, e.Reason)
}

func (e *InvalidSubStateError) Is(target error) bool {
	return target == ErrInvalidSubState
}
