package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shirt-orders/api/internal/catalog"
)

// CatalogHandler publishes the catalog the order form prices against.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// RegisterRoutes registers the catalog endpoint on the given Chi router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.Get)
}

// --- Response types ---

type variantResponse struct {
	ID       string `json:"id"`
	Number   int32  `json:"number"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Material string `json:"material"`
	ImageURL string `json:"image_url,omitempty"`
	Price    string `json:"price"`
}

type addonResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Price string `json:"price"`
}

type catalogResponse struct {
	Version      string            `json:"version"`
	Variants     []variantResponse `json:"variants"`
	Addons       []addonResponse   `json:"addons"`
	Sizes        []string          `json:"sizes"`
	DefaultSize  string            `json:"default_size,omitempty"`
	RequireAddon bool              `json:"require_addon"`
}

// Get returns the orderable variants and add-ons. Retired variants are left
// out; they only exist so old records keep their names.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := h.catalog
	resp := catalogResponse{
		Version:      c.Version,
		Variants:     []variantResponse{},
		Addons:       make([]addonResponse, len(c.Addons)),
		Sizes:        c.Policy.Sizes,
		DefaultSize:  c.Policy.DefaultSize,
		RequireAddon: c.Policy.RequireAddon,
	}
	if resp.Sizes == nil {
		resp.Sizes = []string{}
	}

	for _, v := range c.Variants {
		if v.Retired {
			continue
		}
		resp.Variants = append(resp.Variants, variantResponse{
			ID:       v.ID,
			Number:   v.Number,
			Name:     v.Name,
			Color:    v.Color,
			Material: v.Material,
			ImageURL: v.ImageURL,
			Price:    v.Price.StringFixed(2),
		})
	}
	for i, a := range c.Addons {
		resp.Addons[i] = addonResponse{ID: a.ID, Label: a.Label, Price: a.Price.StringFixed(2)}
	}

	writeJSON(w, http.StatusOK, resp)
}
