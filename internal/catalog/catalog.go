// Package catalog resolves variant and add-on prices against a fixed,
// versioned product catalog. Lookups are pure: nothing here touches the
// network and a loaded Catalog is never mutated.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Errors returned by catalog lookups and validation.
var (
	ErrVariantNotFound = errors.New("variant not found")
	ErrAddonNotFound   = errors.New("add-on not found")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

// Variant is one orderable product option.
type Variant struct {
	ID       string          `yaml:"id"`
	Number   int32           `yaml:"number"`
	Name     string          `yaml:"name"`
	Color    string          `yaml:"color"`
	Material string          `yaml:"material"`
	ImageURL string          `yaml:"image_url"`
	Price    decimal.Decimal `yaml:"price"`
	// Retired variants keep resolving names for old records but can no
	// longer be ordered.
	Retired bool `yaml:"retired"`
}

// Addon is an optional priced extra such as an entry ticket.
type Addon struct {
	ID    string          `yaml:"id"`
	Label string          `yaml:"label"`
	Price decimal.Decimal `yaml:"price"`
}

// Policy decides which submission fields a deployment requires.
type Policy struct {
	RequireAddon bool     `yaml:"require_addon"`
	Sizes        []string `yaml:"sizes"`
	DefaultSize  string   `yaml:"default_size"`
}

// Catalog is an immutable, indexed set of variants and add-ons.
type Catalog struct {
	Version  string    `yaml:"version"`
	Variants []Variant `yaml:"variants"`
	Addons   []Addon   `yaml:"addons"`
	Policy   Policy    `yaml:"policy"`

	byID     map[string]Variant
	byNumber map[int32]Variant
	addons   map[string]Addon
}

// Load reads a YAML catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and indexes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

// New builds a catalog from in-memory entries.
func New(version string, variants []Variant, addons []Addon, policy Policy) (*Catalog, error) {
	c := &Catalog{
		Version:  version,
		Variants: slices.Clone(variants),
		Addons:   slices.Clone(addons),
		Policy:   policy,
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default is the catalog shipped with the service: one shirt model and the
// two entry-ticket options.
func Default() *Catalog {
	c, err := New("2025.1",
		[]Variant{{
			ID:       "camisa-bits",
			Number:   1,
			Name:     "Camisa Bits - Edição Especial",
			Color:    "Preto",
			Material: "100% Algodão",
			ImageURL: "/FRENTE[1].png",
			Price:    decimal.RequireFromString("50.00"),
		}},
		[]Addon{
			{ID: "inteira", Label: "Entrada Inteira", Price: decimal.RequireFromString("58.00")},
			{ID: "meia", Label: "Meia Entrada", Price: decimal.RequireFromString("29.00")},
		},
		Policy{
			RequireAddon: true,
			Sizes:        []string{"P", "M", "G", "GG", "XGG", "P BL", "M BL", "G BL", "GG BL"},
			DefaultSize:  "M",
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) index() error {
	if c.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidCatalog)
	}
	c.byID = make(map[string]Variant, len(c.Variants))
	c.byNumber = make(map[int32]Variant, len(c.Variants))
	for _, v := range c.Variants {
		if v.ID == "" || v.Number <= 0 {
			return fmt.Errorf("%w: variant needs an id and a positive number", ErrInvalidCatalog)
		}
		if v.Price.IsNegative() {
			return fmt.Errorf("%w: variant %s has a negative price", ErrInvalidCatalog, v.ID)
		}
		if !wholeCents(v.Price) {
			return fmt.Errorf("%w: variant %s price %s has more than two decimals", ErrInvalidCatalog, v.ID, v.Price)
		}
		if _, dup := c.byID[v.ID]; dup {
			return fmt.Errorf("%w: duplicate variant id %s", ErrInvalidCatalog, v.ID)
		}
		if _, dup := c.byNumber[v.Number]; dup {
			return fmt.Errorf("%w: duplicate variant number %d", ErrInvalidCatalog, v.Number)
		}
		c.byID[v.ID] = v
		c.byNumber[v.Number] = v
	}
	c.addons = make(map[string]Addon, len(c.Addons))
	for _, a := range c.Addons {
		if a.ID == "" {
			return fmt.Errorf("%w: add-on needs an id", ErrInvalidCatalog)
		}
		if a.Price.IsNegative() {
			return fmt.Errorf("%w: add-on %s has a negative price", ErrInvalidCatalog, a.ID)
		}
		if !wholeCents(a.Price) {
			return fmt.Errorf("%w: add-on %s price %s has more than two decimals", ErrInvalidCatalog, a.ID, a.Price)
		}
		if _, dup := c.addons[a.ID]; dup {
			return fmt.Errorf("%w: duplicate add-on id %s", ErrInvalidCatalog, a.ID)
		}
		c.addons[a.ID] = a
	}
	if c.Policy.DefaultSize != "" && !c.ValidSize(c.Policy.DefaultSize) {
		return fmt.Errorf("%w: default size %q is not an allowed size", ErrInvalidCatalog, c.Policy.DefaultSize)
	}
	return nil
}

// wholeCents reports whether d is stored without rounding in a
// NUMERIC(10,2) column.
func wholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Variant returns an orderable variant. Retired variants are not found.
func (c *Catalog) Variant(id string) (Variant, error) {
	v, ok := c.byID[id]
	if !ok || v.Retired {
		return Variant{}, fmt.Errorf("%w: %s", ErrVariantNotFound, id)
	}
	return v, nil
}

// VariantByNumber looks up any variant, retired or not, by its number.
func (c *Catalog) VariantByNumber(n int32) (Variant, bool) {
	v, ok := c.byNumber[n]
	return v, ok
}

// ResolveVariantPrice returns the unit price of an orderable variant.
func (c *Catalog) ResolveVariantPrice(id string) (decimal.Decimal, error) {
	v, err := c.Variant(id)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Price, nil
}

// Addon returns the add-on with the given id.
func (c *Catalog) Addon(id string) (Addon, error) {
	a, ok := c.addons[id]
	if !ok {
		return Addon{}, fmt.Errorf("%w: %s", ErrAddonNotFound, id)
	}
	return a, nil
}

// ResolveAddonPrice returns the price of the add-on with the given id.
func (c *Catalog) ResolveAddonPrice(id string) (decimal.Decimal, error) {
	a, err := c.Addon(id)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Price, nil
}

// VariantName is the display name used by the staff view and the report.
func (c *Catalog) VariantName(n int32) string {
	if n <= 0 {
		return "Not specified"
	}
	if v, ok := c.byNumber[n]; ok {
		return v.Name
	}
	return fmt.Sprintf("Model %d", n)
}

// AddonLabel returns the add-on's label, or the raw id for add-ons that
// are no longer in the catalog.
func (c *Catalog) AddonLabel(id string) string {
	if a, ok := c.addons[id]; ok {
		return a.Label
	}
	return id
}

// ValidSize reports whether size is allowed. An empty size list allows any.
func (c *Catalog) ValidSize(size string) bool {
	if len(c.Policy.Sizes) == 0 {
		return true
	}
	return slices.Contains(c.Policy.Sizes, size)
}
