package handler_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/handler"
	"github.com/shirt-orders/api/internal/order"
	"github.com/shirt-orders/api/internal/report"
)

func setupReportsRouter(store handler.ReportSource) *chi.Mux {
	h := handler.NewReportsHandler(store, report.NewCompiler(catalog.Default(), "Pedidos"))
	r := chi.NewRouter()
	r.Route("/admin/reports", h.RegisterRoutes)
	return r
}

func getReport(t *testing.T, r http.Handler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/admin/reports/orders"+query, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func reportStore() *mockManager {
	paid := anaRecord()
	paid.Paid = true
	return &mockManager{listFn: func(context.Context, order.Filter) ([]order.Record, error) {
		return []order.Record{anaRecord(), paid}, nil
	}}
}

func TestReport_JSON(t *testing.T) {
	r := setupReportsRouter(reportStore())

	rr := getReport(t, r, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	summary := resp["summary"].(map[string]interface{})
	if summary["total_orders"].(float64) != 2 || summary["total_items"].(float64) != 4 {
		t.Errorf("counts: %v", summary)
	}
	if summary["total_value"] != "258.00" {
		t.Errorf("value: got %v, want 258.00", summary["total_value"])
	}
	if summary["paid"].(float64) != 1 || summary["unpaid"].(float64) != 1 {
		t.Errorf("paid/unpaid: %v", summary)
	}
	row := resp["rows"].([]interface{})[0].(map[string]interface{})
	if row["total"] != "129.00" || row["ticket"] != "Meia Entrada" {
		t.Errorf("row: %v", row)
	}
}

func TestReport_PassesFilter(t *testing.T) {
	var got order.Filter
	store := &mockManager{listFn: func(_ context.Context, f order.Filter) ([]order.Record, error) {
		got = f
		return nil, nil
	}}
	r := setupReportsRouter(store)

	rr := getReport(t, r, "?paid=true&q=%20Ana%20")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if got.Paid == nil || !*got.Paid || got.Search != "Ana" {
		t.Errorf("filter: %+v", got)
	}
}

func TestReport_CSV(t *testing.T) {
	r := setupReportsRouter(reportStore())

	rr := getReport(t, r, "?format=csv")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("content type: %s", rr.Header().Get("Content-Type"))
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "orders-report-") || !strings.HasSuffix(cd, `.csv"`) {
		t.Errorf("disposition: %s", cd)
	}

	lines, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(lines) != 3 {
		t.Errorf("lines: got %d, want header + 2", len(lines))
	}
}

func TestReport_PDFAndText(t *testing.T) {
	r := setupReportsRouter(reportStore())

	rr := getReport(t, r, "?format=pdf")
	if rr.Code != http.StatusOK {
		t.Fatalf("pdf status: got %d", rr.Code)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")) {
		t.Error("expected a PDF document")
	}
	if rr.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("content type: %s", rr.Header().Get("Content-Type"))
	}

	rr = getReport(t, r, "?format=txt")
	if rr.Code != http.StatusOK {
		t.Fatalf("txt status: got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Ana") {
		t.Errorf("table missing rows: %s", rr.Body.String())
	}
}

func TestReport_Errors(t *testing.T) {
	r := setupReportsRouter(reportStore())
	if rr := getReport(t, r, "?format=xlsx"); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown format: got %d", rr.Code)
	}

	failing := &mockManager{listFn: func(context.Context, order.Filter) ([]order.Record, error) {
		return nil, &order.PersistenceError{Op: "list orders", Err: errors.New("down")}
	}}
	if rr := getReport(t, setupReportsRouter(failing), "?format=pdf"); rr.Code != http.StatusInternalServerError {
		t.Errorf("store failure: got %d", rr.Code)
	}
}
