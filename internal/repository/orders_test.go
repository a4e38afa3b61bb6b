package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/bakeryspot/internal/domain/order"
)

func TestOrdersSaveAssignsID(t *testing.T) {
	repo := NewOrders()

	o := order.New(1, order.FulfillmentPickup)
	saved, err := repo.Save(o)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	got, err := repo.GetByID(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

func TestOrdersGetByIDNotFound(t *testing.T) {
	repo := NewOrders()

	_, err := repo.GetByID("missing")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "order", nf.Entity)
}

func TestOrdersUpdateUnknownFails(t *testing.T) {
	repo := NewOrders()

	o := order.New(1, order.FulfillmentPickup)
	o.ID = "never-saved"
	_, err := repo.Update(o)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestOrdersStoredCopyIsIsolated(t *testing.T) {
	repo := NewOrders()

	o := order.New(1, order.FulfillmentPickup)
	require.NoError(t, o.AddItem("p1", "Croissant", 3.5, 1))
	saved, err := repo.Save(o)
	require.NoError(t, err)

	// Mutating the returned copy must not leak into the store.
	saved.Items[0].Quantity = 99
	got, err := repo.GetByID(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)
}

func TestOrdersListNewestFirstWithFilterAndPagination(t *testing.T) {
	repo := NewOrders()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	statuses := []order.Status{
		order.StatusPending, order.StatusConfirmed, order.StatusPending,
		order.StatusCancelled, order.StatusPending,
	}
	for i, s := range statuses {
		o := order.New(int64(i+1), order.FulfillmentPickup)
		o.Status = s
		o.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := repo.Save(o)
		require.NoError(t, err)
	}

	all, err := repo.List(OrderFilter{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].CreatedAt.After(all[i].CreatedAt))
	}

	pending := order.StatusPending
	filtered, err := repo.List(OrderFilter{Status: &pending}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, filtered, 3)

	page, err := repo.List(OrderFilter{}, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[1].ID, page[0].ID)

	empty, err := repo.List(OrderFilter{}, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
