package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/order"
)

// PaymentToggler flips the paid flag of one record.
// Satisfied by *service.OrderGateway.
type PaymentToggler interface {
	SetPaid(ctx context.Context, id uuid.UUID, paid bool) (order.Record, error)
}

// PaymentHandler handles the payment state toggle.
type PaymentHandler struct {
	store   PaymentToggler
	catalog *catalog.Catalog
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(store PaymentToggler, c *catalog.Catalog) *PaymentHandler {
	return &PaymentHandler{store: store, catalog: c}
}

// RegisterRoutes registers the toggle on the given Chi router.
// Expected to be mounted at /admin/orders
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Patch("/{id}/paid", h.SetPaid)
}

type setPaidRequest struct {
	Paid *bool `json:"paid"`
}

// SetPaid sets the paid flag to the requested value. Setting the value a
// record already has is a no-op that still returns 200.
func (h *PaymentHandler) SetPaid(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req setPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Paid == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "paid is required"})
		return
	}

	rec, err := h.store.SetPaid(r.Context(), id, *req.Paid)
	if err != nil {
		writeOrderError(w, "set paid", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(h.catalog, rec))
}
