// Package payments protects calls to the external payment gateway with a
// circuit breaker and an exponential-backoff retry policy. The gateway itself
// sits behind a narrow interface; the shipped implementation is a stub, as no
// real processor is integrated yet.
package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrGatewayUnavailable marks transient gateway failures eligible for
	// retry (timeouts, 5xx responses, connection resets).
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrDeclined marks a definitive rejection; retrying will not help.
	ErrDeclined = errors.New("payment declined")
)

// ChargeRequest describes a single charge attempt.
type ChargeRequest struct {
	OrderID  string
	Amount   float64
	Currency string
}

// ChargeResult is the gateway's answer to a successful charge.
type ChargeResult struct {
	TransactionID string
	Amount        float64
	Currency      string
}

// Gateway is the narrow boundary to the external payment processor.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// StubGateway approves every charge locally. It stands in for a real
// processor in development and tests.
type StubGateway struct{}

var _ Gateway = (*StubGateway)(nil)

func (StubGateway) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	return &ChargeResult{
		TransactionID: uuid.NewString(),
		Amount:        req.Amount,
		Currency:      req.Currency,
	}, nil
}
