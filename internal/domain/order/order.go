// Package order contains the Order aggregate root and its state machine.
//
// The aggregate owns two independent lifecycles: the operational status
// (pending → confirmed → preparing → ...) driven by the kitchen, and an
// informational payment status driven by the payments subsystem. Invariants
// over items and transitions are enforced here, never in the service layer.
package order

import (
	"time"

	"github.com/jcmexdev/bakeryspot/internal/domain/payment"
)

// Item is a line inside an order. ProductName and UnitPrice are snapshots
// taken at the time the item was added; later catalog edits do not affect
// already-placed orders.
type Item struct {
	ProductID   string
	ProductName string
	UnitPrice   float64
	Quantity    int
}

// Subtotal returns quantity × unit price for this line.
func (i Item) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Order is the aggregate root. The zero value is not usable; construct
// with New.
type Order struct {
	ID            string
	CustomerID    int64
	Fulfillment   FulfillmentType
	Items         []Item
	Status        Status
	PaymentStatus payment.Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New creates an empty PENDING order for a customer. The ID is assigned by
// the repository on first save.
func New(customerID int64, fulfillment FulfillmentType) *Order {
	now := time.Now().UTC()
	return &Order{
		CustomerID:    customerID,
		Fulfillment:   fulfillment,
		Status:        StatusPending,
		PaymentStatus: payment.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Total recomputes the order total from its items. It is never cached.
func (o *Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Subtotal()
	}
	return total
}

// AddItem appends a line to the order. Items are mutable only while the
// order is PENDING; after that the composition is locked.
func (o *Order) AddItem(productID, productName string, unitPrice float64, quantity int) error {
	if o.Status != StatusPending {
		return ErrItemsLocked
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	o.Items = append(o.Items, Item{
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
	})
	return nil
}

// CanTransitionTo reports whether the transition table permits moving to
// target from the current status. It does not check the item or fulfillment
// preconditions; Transition does.
func (o *Order) CanTransitionTo(target Status) bool {
	return o.Status.canTransitionTo(target)
}

// Transition moves the order to a new operational status.
//
// A transition to the current status is a no-op. Confirming requires at
// least one item, and ON_THE_WAY is reserved for delivery orders. Any pair
// outside the transition table fails with *InvalidTransitionError.
func (o *Order) Transition(target Status) error {
	if target == o.Status {
		return nil
	}
	if !o.Status.canTransitionTo(target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}
	switch target {
	case StatusConfirmed:
		if len(o.Items) == 0 {
			return ErrNoItems
		}
	case StatusOnTheWay:
		if o.Fulfillment != FulfillmentDelivery {
			return ErrNotDelivery
		}
	}
	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// SetPaymentStatus records the informational payment state on the order.
// It never blocks an operational transition.
func (o *Order) SetPaymentStatus(s payment.Status) {
	o.PaymentStatus = s
	o.UpdatedAt = time.Now().UTC()
}
