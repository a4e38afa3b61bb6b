package order

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(ft FulfillmentType, at Status, items int) *Order {
	o := New(7, ft)
	for i := 0; i < items; i++ {
		_ = o.AddItem("prod-1", "Croissant", 3.5, 1)
	}
	o.Status = at
	return o
}

func TestTransitionTable(t *testing.T) {
	all := []Status{
		StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusOnTheWay, StatusDelivered, StatusCancelled,
	}
	allowed := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusPreparing, StatusCancelled},
		StatusPreparing: {StatusReady, StatusOnTheWay, StatusCancelled},
		StatusReady:     {StatusDelivered, StatusCancelled},
		StatusOnTheWay:  {StatusDelivered},
		StatusDelivered: {},
		StatusCancelled: {},
	}

	isAllowed := func(from, to Status) bool {
		for _, s := range allowed[from] {
			if s == to {
				return true
			}
		}
		return false
	}

	for _, from := range all {
		for _, to := range all {
			if from == to {
				continue
			}
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				o := newTestOrder(FulfillmentDelivery, from, 1)
				err := o.Transition(to)
				if isAllowed(from, to) {
					require.NoError(t, err)
					assert.Equal(t, to, o.Status)
				} else {
					var tErr *InvalidTransitionError
					require.ErrorAs(t, err, &tErr)
					assert.Equal(t, from, tErr.From)
					assert.Equal(t, to, tErr.To)
					assert.Equal(t, from, o.Status)
				}
			})
		}
	}
}

func TestTransitionUpdatesTimestamp(t *testing.T) {
	o := newTestOrder(FulfillmentPickup, StatusPending, 1)
	before := o.UpdatedAt
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, o.Transition(StatusConfirmed))
	assert.True(t, o.UpdatedAt.After(before))
}

func TestTransitionSameStatusIsNoop(t *testing.T) {
	o := newTestOrder(FulfillmentPickup, StatusDelivered, 1)
	stamp := o.UpdatedAt

	require.NoError(t, o.Transition(StatusDelivered))
	assert.Equal(t, StatusDelivered, o.Status)
	assert.Equal(t, stamp, o.UpdatedAt)
}

func TestConfirmRequiresItems(t *testing.T) {
	o := New(1, FulfillmentPickup)
	require.ErrorIs(t, o.Transition(StatusConfirmed), ErrNoItems)
	assert.Equal(t, StatusPending, o.Status)

	require.NoError(t, o.AddItem("prod-1", "Baguette", 2.0, 1))
	require.NoError(t, o.Transition(StatusConfirmed))
}

func TestOnTheWayRequiresDelivery(t *testing.T) {
	o := newTestOrder(FulfillmentPickup, StatusPreparing, 1)
	require.ErrorIs(t, o.Transition(StatusOnTheWay), ErrNotDelivery)
	assert.Equal(t, StatusPreparing, o.Status)

	o = newTestOrder(FulfillmentDelivery, StatusPreparing, 1)
	require.NoError(t, o.Transition(StatusOnTheWay))
}

func TestInTransitOrdersCannotBeCancelled(t *testing.T) {
	o := newTestOrder(FulfillmentDelivery, StatusOnTheWay, 1)
	err := o.Transition(StatusCancelled)

	var tErr *InvalidTransitionError
	require.True(t, errors.As(err, &tErr))
}

func TestAddItem(t *testing.T) {
	o := New(1, FulfillmentPickup)

	require.NoError(t, o.AddItem("prod-1", "Croissant", 3.5, 2))
	require.ErrorIs(t, o.AddItem("prod-2", "Eclair", 4.0, 0), ErrInvalidQuantity)
	require.ErrorIs(t, o.AddItem("prod-2", "Eclair", 4.0, -1), ErrInvalidQuantity)
	require.Len(t, o.Items, 1)

	require.NoError(t, o.Transition(StatusConfirmed))
	require.ErrorIs(t, o.AddItem("prod-2", "Eclair", 4.0, 1), ErrItemsLocked)
}

func TestTotalIsSumOfSubtotals(t *testing.T) {
	o := New(1, FulfillmentPickup)
	assert.Equal(t, 0.0, o.Total())

	require.NoError(t, o.AddItem("prod-1", "Croissant", 3.5, 2))
	assert.InDelta(t, 7.0, o.Total(), 1e-9)

	require.NoError(t, o.AddItem("prod-2", "Sourdough", 6.25, 3))
	assert.InDelta(t, 7.0+18.75, o.Total(), 1e-9)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("on_the_way")
	require.True(t, ok)
	assert.Equal(t, StatusOnTheWay, s)

	_, ok = ParseStatus("shipped")
	assert.False(t, ok)
}
