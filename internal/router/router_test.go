package router_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shirt-orders/api/internal/auth"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/config"
	"github.com/shirt-orders/api/internal/database"
	"github.com/shirt-orders/api/internal/router"
	"github.com/shirt-orders/api/internal/ws"
)

const testSecret = "router-secret"

type nopStore struct{}

func (nopStore) Put(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", nil
}
func (nopStore) Remove(context.Context, string) error { return nil }
func (nopStore) KeyFromURL(string) (string, bool) { return "", false }
func (nopStore) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T, rate string) http.Handler {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:   testSecret,
		CORSOrigins: []string{"http://localhost:3000"},
		SubmitRate:  rate,
	}
	r, err := router.New(cfg, router.Deps{
		Queries: database.New(nil),
		Catalog: catalog.Default(),
		Store:   nopStore{},
		Hub:     ws.NewHub(),
	})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return r
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := newTestRouter(t, "20-M")

	for _, path := range []string{"/health", "/catalog"} {
		req := httptest.NewRequest("GET", path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d", path, rr.Code)
		}
	}
}

func TestRouter_AdminRequiresAdminToken(t *testing.T) {
	r := newTestRouter(t, "20-M")

	req := httptest.NewRequest("GET", "/admin/orders", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	token, err := auth.GenerateToken(testSecret, uuid.New(), "viewer@test.com", "VIEWER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req = httptest.NewRequest("GET", "/admin/admins", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("wrong role: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRouter_SubmissionRateLimited(t *testing.T) {
	r := newTestRouter(t, "1-M")

	post := func() int {
		req := httptest.NewRequest("POST", "/orders", strings.NewReader("name="))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	if got := post(); got != http.StatusBadRequest {
		t.Fatalf("first submission: got %d, want %d", got, http.StatusBadRequest)
	}
	if got := post(); got != http.StatusTooManyRequests {
		t.Errorf("second submission: got %d, want %d", got, http.StatusTooManyRequests)
	}
}

func TestRouter_InvalidRate(t *testing.T) {
	_, err := router.New(&config.Config{SubmitRate: "lots"}, router.Deps{
		Queries: database.New(nil),
		Catalog: catalog.Default(),
		Store:   nopStore{},
		Hub:     ws.NewHub(),
	})
	if err == nil {
		t.Fatal("expected error for malformed rate")
	}
}
