package order

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity is returned when an item is added with a quantity <= 0.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrItemsLocked is returned when an item is added to an order that has
	// left the PENDING state.
	ErrItemsLocked = errors.New("items can only be added while the order is pending")

	// ErrNoItems is returned when an empty order is confirmed.
	ErrNoItems = errors.New("order must contain at least one item to be confirmed")

	// ErrNotDelivery is returned when a pickup order is sent on the way.
	ErrNotDelivery = errors.New("only delivery orders can be on the way")
)

// InvalidTransitionError reports a status change that is not in the
// transition table. It names both statuses so the caller can surface them.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
