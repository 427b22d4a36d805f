package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/order"
	"github.com/shirt-orders/api/internal/service"
	"github.com/shirt-orders/api/internal/storage"
	"github.com/shopspring/decimal"
)

// Multipart overhead allowed on top of the proof itself.
const formOverhead int64 = 1 << 20

// OrderSubmitter accepts customer submissions.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderSubmitter interface {
	Submit(ctx context.Context, sub service.Submission) ([]order.Record, error)
}

// OrderManager is what the staff dashboard needs from the persistence
// gateway. Satisfied by *service.OrderGateway.
type OrderManager interface {
	Get(ctx context.Context, id uuid.UUID) (order.Record, error)
	Update(ctx context.Context, id uuid.UUID, p order.Patch) (order.Record, error)
	SetPaid(ctx context.Context, id uuid.UUID, paid bool) (order.Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Groups(ctx context.Context, f order.Filter) ([]order.Composite, error)
}

// OrderHandler serves the public order form submission.
type OrderHandler struct {
	submitter OrderSubmitter
	catalog   *catalog.Catalog
	maxBody   int64
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(submitter OrderSubmitter, c *catalog.Catalog) *OrderHandler {
	return &OrderHandler{submitter: submitter, catalog: c, maxBody: storage.MaxProofSize + formOverhead}
}

// RegisterRoutes registers the submission endpoint.
// Expected to be mounted at /orders, behind the submission rate limit.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Submit)
}

// AdminOrderHandler serves the staff dashboard endpoints.
type AdminOrderHandler struct {
	store   OrderManager
	catalog *catalog.Catalog
}

// NewAdminOrderHandler creates a new AdminOrderHandler.
func NewAdminOrderHandler(store OrderManager, c *catalog.Catalog) *AdminOrderHandler {
	return &AdminOrderHandler{store: store, catalog: c}
}

// RegisterRoutes registers staff order endpoints.
// Expected to be mounted inside the admin subrouter: /admin/orders
func (h *AdminOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type updateOrderRequest struct {
	Name        *string `json:"name"`
	Size        *string `json:"size"`
	ModelNumber *int32  `json:"model_number"`
	Color       *string `json:"color"`
	Material    *string `json:"material"`
	Quantity    *int32  `json:"quantity"`
	Price       *string `json:"price"`
	Description *string `json:"description"`
	Paid        *bool   `json:"paid"`
}

type orderResponse struct {
	ID            uuid.UUID `json:"id"`
	GroupID       string    `json:"order_group,omitempty"`
	Name          string    `json:"name"`
	Size          string    `json:"size"`
	Color         string    `json:"color"`
	Material      string    `json:"material"`
	ModelNumber   int32     `json:"model_number"`
	ModelName     string    `json:"model_name"`
	Quantity      int32     `json:"quantity"`
	Price         string    `json:"price"`
	TicketType    string    `json:"ticket_type,omitempty"`
	TicketLabel   string    `json:"ticket_label,omitempty"`
	TicketPrice   string    `json:"ticket_price,omitempty"`
	Total         string    `json:"total"`
	Description   string    `json:"description"`
	Paid          bool      `json:"paid"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	ProofURL      string    `json:"payment_proof_url,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type compositeResponse struct {
	Key       string          `json:"key"`
	ItemCount int64           `json:"item_count"`
	Total     string          `json:"total"`
	Paid      bool            `json:"paid"`
	CreatedAt time.Time       `json:"created_at"`
	Orders    []orderResponse `json:"orders"`
}

type submitResponse struct {
	GroupID string          `json:"order_group"`
	Total   string          `json:"total"`
	Orders  []orderResponse `json:"orders"`
}

func toOrderResponse(c *catalog.Catalog, r order.Record) orderResponse {
	resp := orderResponse{
		ID:            r.ID,
		GroupID:       r.GroupID,
		Name:          r.CustomerName,
		Size:          r.Size,
		Color:         r.Color,
		Material:      r.Material,
		ModelNumber:   r.VariantNumber,
		ModelName:     c.VariantName(r.VariantNumber),
		Quantity:      r.Quantity,
		Price:         r.UnitPrice.StringFixed(2),
		Total:         r.Total().StringFixed(2),
		Description:   r.Description,
		Paid:          r.Paid,
		PaymentMethod: r.PaymentMethod,
		ProofURL:      r.ProofURL,
		ImageURL:      r.ImageURL,
		CreatedAt:     r.CreatedAt,
	}
	if r.Addon != nil {
		resp.TicketType = r.Addon.Type
		resp.TicketLabel = c.AddonLabel(r.Addon.Type)
		resp.TicketPrice = r.Addon.Price.StringFixed(2)
	}
	return resp
}

func toOrderResponses(c *catalog.Catalog, records []order.Record) []orderResponse {
	resp := make([]orderResponse, len(records))
	for i, r := range records {
		resp[i] = toOrderResponse(c, r)
	}
	return resp
}

func toCompositeResponse(c *catalog.Catalog, g order.Composite) compositeResponse {
	return compositeResponse{
		Key:       g.Key,
		ItemCount: g.ItemCount,
		Total:     g.Total.StringFixed(2),
		Paid:      g.Paid,
		CreatedAt: g.CreatedAt,
		Orders:    toOrderResponses(c, g.Records),
	}
}

// --- Public handlers ---

// Submit accepts the order form as multipart/form-data (or urlencoded when
// no proof is attached) and creates one record per selected model.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	err := r.ParseMultipartForm(formOverhead)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeOrderError(w, "submit order", &order.UploadError{
				Err: fmt.Errorf("%w: request exceeds %s", storage.ErrTooLarge, humanize.IBytes(uint64(storage.MaxProofSize))),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	sub := parseSubmission(r)

	file, header, err := r.FormFile("payment_proof")
	switch {
	case err == nil:
		defer file.Close()
		sub.Proof = &storage.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment proof"})
		return
	}

	records, err := h.submitter.Submit(r.Context(), sub)
	if err != nil {
		writeOrderError(w, "submit order", err)
		return
	}

	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Total())
	}
	var groupID string
	if len(records) > 0 {
		groupID = records[0].GroupKey()
	}

	writeJSON(w, http.StatusCreated, submitResponse{
		GroupID: groupID,
		Total:   total.StringFixed(2),
		Orders:  toOrderResponses(h.catalog, records),
	})
}

// parseSubmission reads the form values. Syntax problems travel in
// FormErrors so the assembler reports them with every other field error.
func parseSubmission(r *http.Request) service.Submission {
	fields := map[string]string{}
	sub := service.Submission{
		CustomerName:   r.FormValue("name"),
		Size:           r.FormValue("size"),
		Description:    r.FormValue("description"),
		AddonID:        strings.TrimSpace(r.FormValue("addon")),
		CatalogVersion: strings.TrimSpace(r.FormValue("catalog_version")),
	}

	for _, v := range r.Form["variant"] {
		if v = strings.TrimSpace(v); v != "" {
			sub.VariantIDs = append(sub.VariantIDs, v)
		}
	}

	if q := strings.TrimSpace(r.FormValue("quantity")); q != "" {
		n, err := strconv.ParseInt(q, 10, 32)
		if err != nil {
			fields["quantity"] = "quantity must be a whole number"
		} else {
			sub.Quantity = int32(n)
		}
	}

	if p := strings.TrimSpace(r.FormValue("pay_now")); p != "" {
		if p == "on" {
			sub.PayNow = true
		} else if b, err := strconv.ParseBool(p); err == nil {
			sub.PayNow = b
		} else {
			fields["pay_now"] = "pay_now must be true or false"
		}
	}

	if len(fields) > 0 {
		sub.FormErrors = fields
	}
	return sub
}

// --- Admin handlers ---

// List returns the composite orders, multi-item submissions first.
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	groups, err := h.store.Groups(r.Context(), f)
	if err != nil {
		writeOrderError(w, "list orders", err)
		return
	}

	resp := make([]compositeResponse, len(groups))
	for i, g := range groups {
		resp[i] = toCompositeResponse(h.catalog, g)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single record.
func (h *AdminOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeOrderError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(h.catalog, rec))
}

// Update applies a staff edit to one record.
func (h *AdminOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	patch := order.Patch{
		CustomerName:  req.Name,
		Size:          req.Size,
		VariantNumber: req.ModelNumber,
		Color:         req.Color,
		Material:      req.Material,
		Quantity:      req.Quantity,
		Description:   req.Description,
		Paid:          req.Paid,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			writeOrderError(w, "update order", &order.ValidationError{
				Fields: map[string]string{"price": "price must be a decimal number"},
			})
			return
		}
		patch.UnitPrice = &price
	}

	updated, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		writeOrderError(w, "update order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(h.catalog, updated))
}

// Delete removes a record and, best effort, its stored objects.
func (h *AdminOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		writeOrderError(w, "delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func parseFilter(r *http.Request) (order.Filter, error) {
	var f order.Filter
	if p := r.URL.Query().Get("paid"); p != "" {
		b, err := strconv.ParseBool(p)
		if err != nil {
			return f, errors.New("invalid paid filter")
		}
		f.Paid = &b
	}
	f.Search = strings.TrimSpace(r.URL.Query().Get("q"))
	return f, nil
}
