package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/database"
	"github.com/shirt-orders/api/internal/middleware"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to new staff accounts.
const MinPasswordLength = 8

// AdminStore defines the database methods needed by admin account handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AdminStore interface {
	ListAdmins(ctx context.Context) ([]database.Admin, error)
	CreateAdmin(ctx context.Context, arg database.CreateAdminParams) (database.Admin, error)
	DeleteAdmin(ctx context.Context, id uuid.UUID) error
}

// AdminHandler handles staff account endpoints.
type AdminHandler struct {
	store AdminStore
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store AdminStore) *AdminHandler {
	return &AdminHandler{store: store}
}

// RegisterRoutes registers account endpoints on the given Chi router.
// Expected to be mounted inside the admin subrouter: /admin/admins
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type adminResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toAdminResponse(a database.Admin) adminResponse {
	return adminResponse{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

// --- Handlers ---

// List returns every staff account.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.store.ListAdmins(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list admins")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]adminResponse, len(admins))
	for i, a := range admins {
		resp[i] = toAdminResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a staff account.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email, password, and full_name are required"})
		return
	}

	if !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email format"})
		return
	}

	if len(req.Password) < MinPasswordLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("create admin: hash password")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	admin, err := h.store.CreateAdmin(r.Context(), database.CreateAdminParams{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already exists"})
			return
		}
		log.Error().Err(err).Msg("create admin")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toAdminResponse(admin))
}

// Delete removes a staff account. Removing your own account is refused so
// the last admin cannot lock everyone out by accident.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid admin ID"})
		return
	}

	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.AdminID == id {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "cannot delete your own account"})
		return
	}

	if err := h.store.DeleteAdmin(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "admin not found"})
			return
		}
		log.Error().Err(err).Msg("delete admin")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
