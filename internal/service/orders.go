// Package service orchestrates the use cases over the domain aggregates,
// repositories, and the resilience/consistency components. Handlers stay thin;
// authorization and cross-component sequencing live here.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jcmexdev/bakeryspot/internal/audit"
	"github.com/jcmexdev/bakeryspot/internal/domain/order"
	"github.com/jcmexdev/bakeryspot/internal/domain/user"
	"github.com/jcmexdev/bakeryspot/internal/idempotency"
	"github.com/jcmexdev/bakeryspot/internal/ratelimit"
	"github.com/jcmexdev/bakeryspot/internal/repository"
)

// ErrForbidden is returned when a caller's role does not permit an operation.
var ErrForbidden = errors.New("insufficient privileges")

// ValidationError is a client-caused input problem: unknown product, inactive
// product, bad quantity. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	Fulfillment order.FulfillmentType
	Items       []ItemInput
}

// OrderPayload is the canonical serialized form of an order. Order creation
// caches these bytes under the idempotency key, so replays are byte-identical;
// the read endpoints reuse the same shape.
type OrderPayload struct {
	ID            string             `json:"id"`
	CustomerID    int64              `json:"customer_id"`
	Fulfillment   string             `json:"fulfillment_type"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	Items         []OrderItemPayload `json:"items"`
	TotalAmount   float64            `json:"total_amount"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// OrderItemPayload is one serialized order line.
type OrderItemPayload struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// NewOrderPayload maps an aggregate to its serialized form.
func NewOrderPayload(o *order.Order) OrderPayload {
	items := make([]OrderItemPayload, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemPayload{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal(),
		}
	}
	return OrderPayload{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		Fulfillment:   string(o.Fulfillment),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Items:         items,
		TotalAmount:   o.Total(),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// OrderService implements the order use cases.
type OrderService struct {
	orders   *repository.Orders
	payments *repository.Payments
	catalog  *repository.Catalog
	idem     idempotency.Store
	limiter  *ratelimit.Limiter
	auditLog audit.Recorder // nil-safe: auditing skipped if nil

	// flights collapses concurrent order creations that share an idempotency
	// key into a single execution.
	flights singleflight.Group
}

// NewOrderService wires the orchestrator. auditLog may be nil, in which case
// status transitions are not persisted to the audit trail.
func NewOrderService(
	orders *repository.Orders,
	payments *repository.Payments,
	catalog *repository.Catalog,
	idem idempotency.Store,
	limiter *ratelimit.Limiter,
	auditLog audit.Recorder,
) *OrderService {
	return &OrderService{
		orders:   orders,
		payments: payments,
		catalog:  catalog,
		idem:     idem,
		limiter:  limiter,
		auditLog: auditLog,
	}
}

type createResult struct {
	payload  []byte
	replayed bool
}

// CreateOrder places an order with exactly-once semantics per idempotency key.
//
// The admission sequence is: key validation, rate limit, idempotency lookup.
// On a cache hit the stored bytes are returned verbatim and nothing executes.
// On a miss the products are validated against the catalog, the aggregate is
// built and persisted, and the serialized response is cached before returning.
// Concurrent requests with the same key collapse into one execution and all
// receive the first execution's payload.
func (s *OrderService) CreateOrder(ctx context.Context, ident user.Identity, idemKey string, in CreateOrderInput) ([]byte, bool, error) {
	if err := idempotency.ValidateKey(idemKey); err != nil {
		return nil, false, err
	}
	if err := s.limiter.Check(fmt.Sprintf("user:%d", ident.UserID), "create_order"); err != nil {
		return nil, false, err
	}
	if len(in.Items) == 0 {
		return nil, false, &ValidationError{Msg: "order must contain at least one item"}
	}

	v, err, _ := s.flights.Do(idemKey, func() (any, error) {
		// Check the store inside the flight as well: a previous flight may
		// have completed between the caller's Do and ours.
		if payload, ok, err := s.idem.Get(ctx, idemKey); err != nil {
			return nil, fmt.Errorf("idempotency lookup: %w", err)
		} else if ok {
			return createResult{payload: payload, replayed: true}, nil
		}

		o, err := s.buildOrder(ident.UserID, in)
		if err != nil {
			return nil, err
		}
		saved, err := s.orders.Save(o)
		if err != nil {
			return nil, fmt.Errorf("save order: %w", err)
		}

		payload, err := json.Marshal(NewOrderPayload(saved))
		if err != nil {
			return nil, fmt.Errorf("marshal order %s: %w", saved.ID, err)
		}
		if err := s.idem.Set(ctx, idemKey, payload); err != nil {
			return nil, fmt.Errorf("idempotency store: %w", err)
		}

		slog.InfoContext(ctx, "order_created",
			"order_id", saved.ID,
			"customer_id", saved.CustomerID,
			"total_amount", saved.Total(),
			"fulfillment_type", saved.Fulfillment,
		)
		return createResult{payload: payload}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := v.(createResult)
	if res.replayed {
		slog.InfoContext(ctx, "order_create_replayed", "customer_id", ident.UserID)
	}
	return res.payload, res.replayed, nil
}

// buildOrder validates every requested line against the catalog and
// assembles the aggregate.
func (s *OrderService) buildOrder(customerID int64, in CreateOrderInput) (*order.Order, error) {
	o := order.New(customerID, in.Fulfillment)
	for _, it := range in.Items {
		product, err := s.catalog.LookupProduct(it.ProductID)
		if err != nil {
			var nf *repository.NotFoundError
			if errors.As(err, &nf) {
				return nil, &ValidationError{Msg: fmt.Sprintf("product %s not found", it.ProductID)}
			}
			return nil, fmt.Errorf("catalog lookup %s: %w", it.ProductID, err)
		}
		if !product.Active {
			return nil, &ValidationError{Msg: fmt.Sprintf("product %s is not active", it.ProductID)}
		}
		if err := o.AddItem(product.ID, product.Name, product.Price, it.Quantity); err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
	}
	return o, nil
}

// GetOrder loads an order and enforces read access: customers can only read
// their own orders, staff and admins can read any.
func (s *OrderService) GetOrder(ctx context.Context, ident user.Identity, orderID string) (*order.Order, error) {
	o, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if ident.Role == user.RoleCustomer && o.CustomerID != ident.UserID {
		// Present as not-found so customers cannot probe for foreign IDs.
		return nil, &repository.NotFoundError{Entity: "order", ID: orderID}
	}
	return o, nil
}

// ListOrders returns orders for the admin listing, newest first.
func (s *OrderService) ListOrders(ctx context.Context, statusFilter *order.Status, limit, offset int) ([]order.Order, error) {
	return s.orders.List(repository.OrderFilter{Status: statusFilter}, limit, offset)
}

// UpdateStatus applies an operational transition on behalf of an admin or
// staff user. STAFF cannot cancel; that is reserved for ADMIN, independently
// of whether the transition itself would be valid.
func (s *OrderService) UpdateStatus(ctx context.Context, ident user.Identity, orderID string, target order.Status) (*order.Order, error) {
	if ident.Role == user.RoleStaff && target == order.StatusCancelled {
		slog.WarnContext(ctx, "staff_cancel_attempt_denied",
			"actor_id", ident.UserID,
			"order_id", orderID,
		)
		return nil, fmt.Errorf("%w: staff cannot cancel orders", ErrForbidden)
	}

	o, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	previous := o.Status
	if err := o.Transition(target); err != nil {
		return nil, err
	}
	updated, err := s.orders.Update(o)
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", orderID, err)
	}

	if s.auditLog != nil {
		event := audit.NewEvent(ctx, orderID, string(previous), string(target), ident.UserID, string(ident.Role))
		if err := s.auditLog.Record(ctx, event); err != nil {
			// The transition already happened; losing an audit row is logged
			// but does not fail the request.
			slog.ErrorContext(ctx, "audit_record_failed", "order_id", orderID, "error", err)
		}
	}

	slog.InfoContext(ctx, "order_status_updated",
		"order_id", orderID,
		"old_status", previous,
		"new_status", target,
		"actor_id", ident.UserID,
		"actor_role", ident.Role,
	)
	return updated, nil
}

// AttachPayment copies a payment's status onto the order's informational
// payment state. Operational transitions stay unblocked by payment.
func (s *OrderService) AttachPayment(ctx context.Context, orderID, paymentID string) (*order.Order, error) {
	o, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}

	o.SetPaymentStatus(p.Status)
	updated, err := s.orders.Update(o)
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", orderID, err)
	}

	slog.InfoContext(ctx, "order_payment_attached",
		"order_id", orderID,
		"payment_id", paymentID,
		"payment_status", p.Status,
	)
	return updated, nil
}
