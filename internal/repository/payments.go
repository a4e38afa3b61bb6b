package repository

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jcmexdev/bakeryspot/internal/domain/payment"
)

// Payments is an in-memory payment store.
type Payments struct {
	mu       sync.RWMutex
	payments map[string]payment.Payment
}

func NewPayments() *Payments {
	return &Payments{payments: make(map[string]payment.Payment)}
}

// Save persists a payment, assigning an ID on first persistence.
func (r *Payments) Save(p *payment.Payment) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.payments[p.ID] = *p
	out := r.payments[p.ID]
	return &out, nil
}

// GetByID returns the payment or a *NotFoundError.
func (r *Payments) GetByID(id string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, &NotFoundError{Entity: "payment", ID: id}
	}
	out := p
	return &out, nil
}

// ListByOrder returns all payments recorded for an order, oldest first.
func (r *Payments) ListByOrder(orderID string) ([]payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []payment.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
