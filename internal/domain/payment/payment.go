// Package payment models the financial lifecycle of an order, tracked
// independently from the order's operational status.
package payment

import (
	"errors"
	"time"
)

// Status represents the financial state of a payment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// ErrNotRefundable is returned when a refund is attempted on a payment that
// never completed.
var ErrNotRefundable = errors.New("only completed payments can be refunded")

// Payment tracks a single payment attempt against an order.
type Payment struct {
	ID        string
	OrderID   string
	Amount    float64
	Method    string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a PENDING payment for an order. The ID is assigned by the
// repository on first save.
func New(orderID string, amount float64, method string) *Payment {
	now := time.Now().UTC()
	return &Payment{
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Complete marks the payment as successfully processed.
func (p *Payment) Complete() {
	p.Status = StatusCompleted
	p.UpdatedAt = time.Now().UTC()
}

// Fail marks the payment attempt as failed.
func (p *Payment) Fail() {
	p.Status = StatusFailed
	p.UpdatedAt = time.Now().UTC()
}

// Refund reverses a completed payment.
func (p *Payment) Refund() error {
	if p.Status != StatusCompleted {
		return ErrNotRefundable
	}
	p.Status = StatusRefunded
	p.UpdatedAt = time.Now().UTC()
	return nil
}
