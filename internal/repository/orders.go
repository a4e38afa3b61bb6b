package repository

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jcmexdev/bakeryspot/internal/domain/order"
)

// OrderFilter narrows ListOrders results.
type OrderFilter struct {
	Status *order.Status
}

// Orders is an in-memory order store. Save assigns IDs; Update requires one.
type Orders struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

func NewOrders() *Orders {
	return &Orders{orders: make(map[string]order.Order)}
}

// Save persists a new order, assigning an ID on first persistence, and
// returns the stored copy.
func (r *Orders) Save(o *order.Order) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	stored := cloneOrder(o)
	r.orders[o.ID] = stored
	out := cloneOrder(&stored)
	return &out, nil
}

// GetByID returns the order or a *NotFoundError.
func (r *Orders) GetByID(id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, &NotFoundError{Entity: "order", ID: id}
	}
	out := cloneOrder(&o)
	return &out, nil
}

// Update overwrites an existing order.
func (r *Orders) Update(o *order.Order) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; !ok {
		return nil, &NotFoundError{Entity: "order", ID: o.ID}
	}
	stored := cloneOrder(o)
	r.orders[o.ID] = stored
	out := cloneOrder(&stored)
	return &out, nil
}

// List returns orders newest-created first, optionally filtered by status,
// with offset/limit pagination.
func (r *Orders) List(filter OrderFilter, limit, offset int) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, cloneOrder(&o))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []order.Order{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// cloneOrder deep-copies the item slice so callers cannot mutate stored state
// behind the repository's back.
func cloneOrder(o *order.Order) order.Order {
	c := *o
	c.Items = append([]order.Item(nil), o.Items...)
	return c
}
