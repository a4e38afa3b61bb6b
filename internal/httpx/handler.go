// Package httpx exposes the HTTP surface: authentication, order placement and
// lookup, and the admin endpoints for order operations and circuit inspection.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/bakeryspot/internal/domain/order"
	"github.com/jcmexdev/bakeryspot/internal/httpx/middlewares"
	"github.com/jcmexdev/bakeryspot/internal/idempotency"
	"github.com/jcmexdev/bakeryspot/internal/payments"
	"github.com/jcmexdev/bakeryspot/internal/ratelimit"
	"github.com/jcmexdev/bakeryspot/internal/repository"
	"github.com/jcmexdev/bakeryspot/internal/resilience"
	"github.com/jcmexdev/bakeryspot/internal/service"
)

const headerIdempotencyKey = "Idempotency-Key"

// Handler handles incoming HTTP requests for the bakery order domain.
type Handler struct {
	auth      *service.AuthService
	orders    *service.OrderService
	payments  *service.PaymentService
	payClient *payments.Client
	tokenTTL  int // seconds, echoed in login responses
}

// NewHandler initializes the handler with its required domain services.
// payClient may be nil when no payment gateway is configured; the circuit
// inspection endpoint then reports 404.
func NewHandler(
	auth *service.AuthService,
	orders *service.OrderService,
	paymentSvc *service.PaymentService,
	payClient *payments.Client,
	tokenTTLSeconds int,
) *Handler {
	return &Handler{
		auth:      auth,
		orders:    orders,
		payments:  paymentSvc,
		payClient: payClient,
		tokenTTL:  tokenTTLSeconds,
	}
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	u, err := h.auth.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
		return
	}
	token, err := h.auth.IssueToken(u)
	if err != nil {
		slog.ErrorContext(r.Context(), "token_issue_failed", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   h.tokenTTL,
	})
}

// CreateOrder places an order. The Idempotency-Key header is mandatory;
// replays return the original response bytes with Idempotency-Replayed set.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := middlewares.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "authorization required")
		return
	}

	idemKey := r.Header.Get(headerIdempotencyKey)
	if idemKey == "" {
		writeError(w, http.StatusBadRequest, "idempotency_key_required", "Idempotency-Key header is required")
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	fulfillment, ok := order.ParseFulfillmentType(req.FulfillmentType)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "fulfillment_type must be pickup or delivery")
		return
	}

	items := make([]service.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	payload, replayed, err := h.orders.CreateOrder(r.Context(), ident, idemKey, service.CreateOrderInput{
		Fulfillment: fulfillment,
		Items:       items,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		w.Header().Set("Idempotency-Replayed", "true")
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// GetOrder retrieves a single order. Customers only see their own.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := middlewares.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "authorization required")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), ident, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, service.NewOrderPayload(o))
}

// ListOrders serves the admin order listing with optional status filtering
// and limit/offset pagination.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var statusFilter *order.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, ok := order.ParseStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_status", "unknown status "+raw)
			return
		}
		statusFilter = &st
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	list, err := h.orders.ListOrders(r.Context(), statusFilter, limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payloads := make([]service.OrderPayload, len(list))
	for i := range list {
		payloads[i] = service.NewOrderPayload(&list[i])
	}
	writeJSON(w, http.StatusOK, payloads)
}

// AdminGetOrder loads any order without the ownership restriction.
func (h *Handler) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := middlewares.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "authorization required")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), ident, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, service.NewOrderPayload(o))
}

// UpdateOrderStatus applies an operational status transition.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := middlewares.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "authorization required")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	target, ok := order.ParseStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_status", "unknown status "+req.Status)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), ident, chi.URLParam(r, "id"), target)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, service.NewOrderPayload(o))
}

// CircuitStats reports the payment circuit breaker's live state.
func (h *Handler) CircuitStats(w http.ResponseWriter, r *http.Request) {
	if h.payClient == nil {
		writeError(w, http.StatusNotFound, "not_configured", "no payment gateway is configured")
		return
	}
	writeJSON(w, http.StatusOK, h.payClient.BreakerStats())
}

// Healthz is the liveness endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// writeServiceError maps domain and service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr  *service.ValidationError
		tErr  *order.InvalidTransitionError
		nfErr *repository.NotFoundError
		rlErr *ratelimit.LimitExceededError
	)
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "validation_failed", vErr.Msg)
	case errors.As(err, &tErr):
		writeError(w, http.StatusBadRequest, "invalid_transition", tErr.Error())
	case errors.Is(err, order.ErrNoItems),
		errors.Is(err, order.ErrNotDelivery),
		errors.Is(err, order.ErrItemsLocked),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, idempotency.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.As(err, &nfErr):
		writeError(w, http.StatusNotFound, "not_found", nfErr.Error())
	case errors.As(err, &rlErr):
		w.Header().Set("Retry-After", strconv.Itoa(int(rlErr.RetryAfter.Seconds())))
		writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded", rlErr.Error())
	case errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, payments.ErrGatewayUnavailable):
		writeError(w, http.StatusBadGateway, "payment_unavailable", "payment processor is unavailable, try again later")
	default:
		slog.ErrorContext(r.Context(), "unhandled_request_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
