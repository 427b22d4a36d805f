package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shirt-orders/api/internal/auth"
	"github.com/shirt-orders/api/internal/database"
	"github.com/shirt-orders/api/internal/handler"
	"github.com/shirt-orders/api/internal/middleware"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock AdminStore ---

type mockAdminStore struct {
	admins map[uuid.UUID]database.Admin
}

func newMockAdminStore() *mockAdminStore {
	return &mockAdminStore{admins: make(map[uuid.UUID]database.Admin)}
}

func (m *mockAdminStore) ListAdmins(_ context.Context) ([]database.Admin, error) {
	out := make([]database.Admin, 0, len(m.admins))
	for _, a := range m.admins {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAdminStore) CreateAdmin(_ context.Context, arg database.CreateAdminParams) (database.Admin, error) {
	for _, a := range m.admins {
		if a.Email == arg.Email {
			return database.Admin{}, &pgconn.PgError{Code: "23505"}
		}
	}
	a := database.Admin{
		ID:           uuid.New(),
		Email:        arg.Email,
		FullName:     arg.FullName,
		PasswordHash: arg.PasswordHash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	m.admins[a.ID] = a
	return a, nil
}

func (m *mockAdminStore) DeleteAdmin(_ context.Context, id uuid.UUID) error {
	if _, ok := m.admins[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.admins, id)
	return nil
}

func setupAdminRouter(store handler.AdminStore, caller uuid.UUID) *chi.Mux {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			claims := &auth.Claims{AdminID: caller, Role: "ADMIN"}
			next.ServeHTTP(w, req.WithContext(middleware.WithClaims(req.Context(), claims)))
		})
	})
	r.Route("/admin/admins", handler.NewAdminHandler(store).RegisterRoutes)
	return r
}

func TestCreateAdmin_HashesPassword(t *testing.T) {
	store := newMockAdminStore()
	r := setupAdminRouter(store, uuid.New())

	rr := postJSON(t, r, "/admin/admins/", map[string]string{
		"email":     " new@test.com ",
		"password":  "long-enough",
		"full_name": "New Staff",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["email"] != "new@test.com" {
		t.Errorf("email: got %v", resp["email"])
	}
	if _, leaked := resp["password_hash"]; leaked {
		t.Error("password hash returned")
	}

	for _, a := range store.admins {
		if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("long-enough")); err != nil {
			t.Errorf("stored hash does not match: %v", err)
		}
	}
}

func TestCreateAdmin_Rejections(t *testing.T) {
	store := newMockAdminStore()
	r := setupAdminRouter(store, uuid.New())
	postJSON(t, r, "/admin/admins/", map[string]string{"email": "dup@test.com", "password": "long-enough", "full_name": "A"})

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing name", map[string]string{"email": "x@test.com", "password": "long-enough"}, http.StatusBadRequest},
		{"bad email", map[string]string{"email": "x", "password": "long-enough", "full_name": "X"}, http.StatusBadRequest},
		{"short password", map[string]string{"email": "x@test.com", "password": "short", "full_name": "X"}, http.StatusBadRequest},
		{"duplicate", map[string]string{"email": "dup@test.com", "password": "long-enough", "full_name": "B"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, r, "/admin/admins/", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d; body: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestDeleteAdmin(t *testing.T) {
	store := newMockAdminStore()
	me, _ := store.CreateAdmin(context.Background(), database.CreateAdminParams{Email: "me@test.com"})
	other, _ := store.CreateAdmin(context.Background(), database.CreateAdminParams{Email: "other@test.com"})
	r := setupAdminRouter(store, me.ID)

	do := func(id string) int {
		req := httptest.NewRequest("DELETE", "/admin/admins/"+id, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	if got := do(me.ID.String()); got != http.StatusConflict {
		t.Errorf("self delete: got %d, want %d", got, http.StatusConflict)
	}
	if got := do(other.ID.String()); got != http.StatusNoContent {
		t.Errorf("delete: got %d, want %d", got, http.StatusNoContent)
	}
	if got := do(other.ID.String()); got != http.StatusNotFound {
		t.Errorf("second delete: got %d, want %d", got, http.StatusNotFound)
	}
	if got := do("nope"); got != http.StatusBadRequest {
		t.Errorf("bad id: got %d, want %d", got, http.StatusBadRequest)
	}
}

func TestListAdmins(t *testing.T) {
	store := newMockAdminStore()
	store.CreateAdmin(context.Background(), database.CreateAdminParams{Email: "a@test.com", FullName: "A"})
	r := setupAdminRouter(store, uuid.New())

	req := httptest.NewRequest("GET", "/admin/admins/", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"email":"a@test.com"`) || !strings.Contains(body, `"full_name":"A"`) {
		t.Errorf("body: %s", body)
	}
}
