package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/auth"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/config"
	"github.com/shirt-orders/api/internal/database"
	"github.com/shirt-orders/api/internal/enum"
	"github.com/shirt-orders/api/internal/events"
	"github.com/shirt-orders/api/internal/handler"
	mw "github.com/shirt-orders/api/internal/middleware"
	"github.com/shirt-orders/api/internal/report"
	"github.com/shirt-orders/api/internal/service"
	"github.com/shirt-orders/api/internal/storage"
	"github.com/shirt-orders/api/internal/ws"
)

// ObjectStore is the bucket as the HTTP layer uses it.
// Satisfied by *storage.MinioStore.
type ObjectStore interface {
	storage.ObjectStore
	KeyFromURL(raw string) (string, bool)
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router wires into handlers. Revoker and
// Publisher may be nil.
type Deps struct {
	Queries   *database.Queries
	Catalog   *catalog.Catalog
	Store     ObjectStore
	Revoker   auth.Revoker
	Hub       *ws.Hub
	Publisher events.Publisher
}

// New creates a Chi router with all application routes wired up.
// Applies authentication, rate limiting and role-based middleware as needed.
func New(cfg *config.Config, deps Deps) (chi.Router, error) {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.AccessLog)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	submitLimit, err := mw.RateLimit(cfg.SubmitRate)
	if err != nil {
		return nil, fmt.Errorf("submission rate limit: %w", err)
	}

	gateway := service.NewOrderGateway(deps.Queries, deps.Store, deps.Catalog, deps.Publisher)
	orders := service.NewOrderService(deps.Catalog, storage.NewProofUploader(deps.Store), gateway, deps.Store)

	// Public routes
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"database": handler.PingFunc(deps.Queries.CheckShirts),
		"storage":  deps.Store,
	})
	healthHandler.RegisterRoutes(r)

	handler.NewCatalogHandler(deps.Catalog).RegisterRoutes(r)

	orderHandler := handler.NewOrderHandler(orders, deps.Catalog)
	r.With(submitLimit).Route("/orders", orderHandler.RegisterRoutes)

	authHandler := handler.NewAuthHandler(deps.Queries, cfg.JWTSecret, deps.Revoker)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(deps.Hub, cfg.JWTSecret, deps.Revoker, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret, deps.Revoker))

		authHandler.RegisterProtectedRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin))

			r.Route("/orders", func(r chi.Router) {
				handler.NewAdminOrderHandler(gateway, deps.Catalog).RegisterRoutes(r)
				handler.NewPaymentHandler(gateway, deps.Catalog).RegisterRoutes(r)
			})

			reportsHandler := handler.NewReportsHandler(gateway, report.NewCompiler(deps.Catalog, "Relatório de Pedidos"))
			r.Route("/reports", reportsHandler.RegisterRoutes)

			r.Route("/admins", handler.NewAdminHandler(deps.Queries).RegisterRoutes)
		})
	})

	log.Debug().Msg("router initialized with all handlers")
	return r, nil
}
