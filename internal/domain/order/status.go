package order

// Status represents the operational lifecycle state of an order.
// It is deliberately decoupled from the payment lifecycle: a kitchen can
// start preparing an order whose payment is still settling.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusOnTheWay  Status = "on_the_way"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// validTransitions is the strict allow-list for status changes.
// ON_THE_WAY additionally requires the order to be a delivery order, and
// CONFIRMED requires at least one item; both are enforced in Transition.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusOnTheWay, StatusCancelled},
	StatusReady:     {StatusDelivered, StatusCancelled},
	StatusOnTheWay:  {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ParseStatus converts a wire-format string into a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusOnTheWay, StatusDelivered, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) canTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// FulfillmentType distinguishes pickup orders from delivery orders.
type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "pickup"
	FulfillmentDelivery FulfillmentType = "delivery"
)

// ParseFulfillmentType converts a wire-format string into a FulfillmentType.
func ParseFulfillmentType(s string) (FulfillmentType, bool) {
	switch FulfillmentType(s) {
	case FulfillmentPickup, FulfillmentDelivery:
		return FulfillmentType(s), true
	}
	return "", false
}
