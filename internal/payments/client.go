package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/bakeryspot/internal/resilience"
)

// Client wraps the gateway with resilience: the retry policy runs inside the
// circuit breaker, so one Client.Charge counts as a single breaker outcome no
// matter how many retries it took. A charge that fails transiently but
// recovers on retry never pushes the breaker toward OPEN.
type Client struct {
	gateway Gateway
	breaker *resilience.Breaker
	retry   resilience.RetryPolicy
}

// NewClient assembles the protected client. The breaker should be named
// "payment_gateway" so its log events and stats are recognisable.
func NewClient(gateway Gateway, breaker *resilience.Breaker, retry resilience.RetryPolicy) *Client {
	return &Client{
		gateway: gateway,
		breaker: breaker,
		retry:   retry,
	}
}

// Retryable reports whether a gateway error is worth retrying. Declines are
// final; only availability problems are transient.
func Retryable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

// Charge processes a payment through the breaker and retry policy.
//
// While the circuit is open the call fails fast with resilience.ErrCircuitOpen
// without touching the gateway. Gateway errors propagate after the breaker's
// bookkeeping; callers can tell "service known-bad" from "this charge failed"
// with errors.Is.
func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	slog.InfoContext(ctx, "payment_processing_started",
		"order_id", req.OrderID,
		"amount", req.Amount,
		"currency", req.Currency,
	)

	var result *ChargeResult
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retry.Execute(ctx, func(ctx context.Context) error {
			res, err := c.gateway.Charge(ctx, req)
			if err != nil {
				return fmt.Errorf("charge order %s: %w", req.OrderID, err)
			}
			result = res
			return nil
		})
	})
	if err != nil {
		slog.ErrorContext(ctx, "payment_processing_failed",
			"order_id", req.OrderID,
			"amount", req.Amount,
			"error", err,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "payment_processing_completed",
		"order_id", req.OrderID,
		"transaction_id", result.TransactionID,
	)
	return result, nil
}

// BreakerStats exposes the breaker snapshot for the observability endpoint.
func (c *Client) BreakerStats() resilience.BreakerStats {
	return c.breaker.Stats()
}

// ResetBreaker forces the breaker closed. Administrative override.
func (c *Client) ResetBreaker() {
	c.breaker.Reset()
}
