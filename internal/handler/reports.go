package handler

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/enum"
	"github.com/shirt-orders/api/internal/order"
	"github.com/shirt-orders/api/internal/report"
)

// ReportSource lists the records a report covers.
// Satisfied by *service.OrderGateway; narrow interface for testability.
type ReportSource interface {
	List(ctx context.Context, f order.Filter) ([]order.Record, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	store    ReportSource
	compiler *report.Compiler
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportSource, compiler *report.Compiler) *ReportsHandler {
	return &ReportsHandler{store: store, compiler: compiler}
}

// RegisterRoutes registers report endpoints.
// Expected to be mounted inside the admin subrouter: /admin/reports
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.Orders)
}

// --- Response types ---

type reportRowResponse struct {
	ID           uuid.UUID `json:"id"`
	GroupKey     string    `json:"group_key"`
	CustomerName string    `json:"customer_name"`
	Size         string    `json:"size"`
	Color        string    `json:"color"`
	ModelName    string    `json:"model_name"`
	Quantity     int32     `json:"quantity"`
	Ticket       string    `json:"ticket"`
	Total        string    `json:"total"`
	Paid         bool      `json:"paid"`
	CreatedAt    time.Time `json:"created_at"`
}

type reportSummaryResponse struct {
	TotalOrders int    `json:"total_orders"`
	TotalItems  int64  `json:"total_items"`
	TotalValue  string `json:"total_value"`
	Paid        int    `json:"paid"`
	Unpaid      int    `json:"unpaid"`
}

type reportResponse struct {
	Title       string                `json:"title"`
	GeneratedAt time.Time             `json:"generated_at"`
	Rows        []reportRowResponse   `json:"rows"`
	Summary     reportSummaryResponse `json:"summary"`
}

func toReportResponse(rep report.Report) reportResponse {
	resp := reportResponse{
		Title:       rep.Title,
		GeneratedAt: rep.GeneratedAt,
		Rows:        make([]reportRowResponse, len(rep.Rows)),
		Summary: reportSummaryResponse{
			TotalOrders: rep.Summary.Orders,
			TotalItems:  rep.Summary.Items,
			TotalValue:  rep.Summary.Value.StringFixed(2),
			Paid:        rep.Summary.Paid,
			Unpaid:      rep.Summary.Unpaid,
		},
	}
	for i, row := range rep.Rows {
		resp.Rows[i] = reportRowResponse{
			ID:           row.ID,
			GroupKey:     row.GroupKey,
			CustomerName: row.CustomerName,
			Size:         row.Size,
			Color:        row.Color,
			ModelName:    row.VariantName,
			Quantity:     row.Quantity,
			Ticket:       row.AddonLabel,
			Total:        row.Total.StringFixed(2),
			Paid:         row.Paid,
			CreatedAt:    row.CreatedAt,
		}
	}
	return resp
}

// --- Handlers ---

// Orders compiles the order report in the requested format:
// json (default), pdf, csv or txt. It accepts the same paid and q filters
// as the order list.
func (h *ReportsHandler) Orders(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = enum.ReportFormatJSON
	}

	var render func(*bytes.Buffer, report.Report) error
	var contentType string
	switch format {
	case enum.ReportFormatJSON:
	case enum.ReportFormatPDF:
		render = func(b *bytes.Buffer, rep report.Report) error { return report.WritePDF(b, rep) }
		contentType = "application/pdf"
	case enum.ReportFormatCSV:
		render = func(b *bytes.Buffer, rep report.Report) error { return report.WriteCSV(b, rep) }
		contentType = "text/csv; charset=utf-8"
	case enum.ReportFormatText:
		render = func(b *bytes.Buffer, rep report.Report) error { return report.WriteTable(b, rep) }
		contentType = "text/plain; charset=utf-8"
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be one of json, pdf, csv, txt"})
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	records, err := h.store.List(r.Context(), f)
	if err != nil {
		writeOrderError(w, "report orders", err)
		return
	}
	rep := h.compiler.Compile(records)

	if render == nil {
		writeJSON(w, http.StatusOK, toReportResponse(rep))
		return
	}

	// Render fully before writing so a failure can still become a 500.
	var buf bytes.Buffer
	if err := render(&buf, rep); err != nil {
		log.Error().Err(err).Str("format", format).Msg("render report")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(rep, format)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn().Err(err).Msg("write report")
	}
}
