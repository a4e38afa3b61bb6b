package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/bakeryspot/internal/domain/payment"
	"github.com/jcmexdev/bakeryspot/internal/payments"
	"github.com/jcmexdev/bakeryspot/internal/repository"
)

// PaymentService drives the financial lifecycle: it creates payment records
// and runs charges through the protected gateway client.
type PaymentService struct {
	payments *repository.Payments
	orders   *repository.Orders
	client   *payments.Client
}

func NewPaymentService(paymentRepo *repository.Payments, orders *repository.Orders, client *payments.Client) *PaymentService {
	return &PaymentService{
		payments: paymentRepo,
		orders:   orders,
		client:   client,
	}
}

// CreatePayment opens a PENDING payment covering the order's current total.
func (s *PaymentService) CreatePayment(ctx context.Context, orderID, method string) (*payment.Payment, error) {
	o, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	p := payment.New(o.ID, o.Total(), method)
	saved, err := s.payments.Save(p)
	if err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}

	slog.InfoContext(ctx, "payment_created",
		"payment_id", saved.ID,
		"order_id", orderID,
		"amount", saved.Amount,
	)
	return saved, nil
}

// ProcessPayment charges a pending payment through the gateway. Success marks
// it COMPLETED, any gateway failure marks it FAILED; either way the outcome is
// persisted and mirrored onto the order's informational payment status.
func (s *PaymentService) ProcessPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}

	_, chargeErr := s.client.Charge(ctx, payments.ChargeRequest{
		OrderID:  p.OrderID,
		Amount:   p.Amount,
		Currency: "EUR",
	})
	if chargeErr != nil {
		p.Fail()
	} else {
		p.Complete()
	}
	if _, err := s.payments.Save(p); err != nil {
		return nil, fmt.Errorf("save payment %s: %w", paymentID, err)
	}
	s.mirrorOntoOrder(ctx, p)

	if chargeErr != nil {
		return nil, chargeErr
	}
	return p, nil
}

// Refund reverses a completed payment.
func (s *PaymentService) Refund(ctx context.Context, paymentID string) (*payment.Payment, error) {
	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if err := p.Refund(); err != nil {
		return nil, err
	}
	if _, err := s.payments.Save(p); err != nil {
		return nil, fmt.Errorf("save payment %s: %w", paymentID, err)
	}
	s.mirrorOntoOrder(ctx, p)

	slog.InfoContext(ctx, "payment_refunded", "payment_id", paymentID, "order_id", p.OrderID)
	return p, nil
}

// ListForOrder returns all payments recorded against an order.
func (s *PaymentService) ListForOrder(ctx context.Context, orderID string) ([]payment.Payment, error) {
	return s.payments.ListByOrder(orderID)
}

// mirrorOntoOrder updates the order's informational payment status. A failure
// here is logged, not surfaced: the payment record is the source of truth.
func (s *PaymentService) mirrorOntoOrder(ctx context.Context, p *payment.Payment) {
	o, err := s.orders.GetByID(p.OrderID)
	if err != nil {
		slog.ErrorContext(ctx, "payment_status_mirror_failed", "order_id", p.OrderID, "error", err)
		return
	}
	o.SetPaymentStatus(p.Status)
	if _, err := s.orders.Update(o); err != nil {
		slog.ErrorContext(ctx, "payment_status_mirror_failed", "order_id", p.OrderID, "error", err)
	}
}
