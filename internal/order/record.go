// Package order holds the Order Record, the derived Composite Order and the
// grouping rules that rebuild customer submissions from the flat record set.
package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Addon is the optional priced extra attached to a record. Type and Price
// travel together: a record either has both or neither.
type Addon struct {
	Type  string
	Price decimal.Decimal
}

// Record is one persisted line of a customer order (one row of `shirts`).
type Record struct {
	ID            uuid.UUID
	GroupID       string
	CustomerName  string
	Size          string
	Color         string
	Material      string
	VariantNumber int32
	Quantity      int32
	UnitPrice     decimal.Decimal
	Addon         *Addon
	Description   string
	Paid          bool
	CreatedAt     time.Time
	ImageURL      string
	PaymentMethod string
	ProofURL      string
}

// GroupKey is the partition key used for grouping. Legacy records without
// a group id form a singleton group keyed by their own id.
func (r Record) GroupKey() string {
	if r.GroupID != "" {
		return r.GroupID
	}
	return r.ID.String()
}

// Total is unit_price × quantity plus the add-on price, if any.
func (r Record) Total() decimal.Decimal {
	total := r.UnitPrice.Mul(decimal.NewFromInt32(r.Quantity))
	if r.Addon != nil {
		total = total.Add(r.Addon.Price)
	}
	return total
}

// StoredObjects lists the object-store URLs the record owns. ImageURL is
// the catalog's product image and is never owned by an order. Records of
// one submission share a proof, so ownership is not exclusive.
func (r Record) StoredObjects() []string {
	if r.ProofURL == "" {
		return nil
	}
	return []string{r.ProofURL}
}

// Patch is a full staff edit. Nil fields are left unchanged.
type Patch struct {
	CustomerName  *string
	Size          *string
	VariantNumber *int32
	Color         *string
	Material      *string
	Quantity      *int32
	UnitPrice     *decimal.Decimal
	Description   *string
	Paid          *bool
}

// Validate checks the staff-edit rules: a non-empty name, a quantity that is
// never negative, and a price in whole cents that is never negative. Zero
// quantity is allowed here.
func (p Patch) Validate() error {
	fields := map[string]string{}
	if p.CustomerName != nil && strings.TrimSpace(*p.CustomerName) == "" {
		fields["name"] = "name is required"
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		fields["quantity"] = "quantity cannot be negative"
	}
	if p.UnitPrice != nil {
		switch {
		case p.UnitPrice.IsNegative():
			fields["price"] = "price cannot be negative"
		case !p.UnitPrice.Equal(p.UnitPrice.Round(2)):
			fields["price"] = "price cannot have more than two decimals"
		}
	}
	if p.VariantNumber != nil && *p.VariantNumber <= 0 {
		fields["model_number"] = "model is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Apply returns a copy of r with the patch applied. Identity, grouping,
// creation time and stored object references are never touched.
func (p Patch) Apply(r Record) Record {
	if p.CustomerName != nil {
		r.CustomerName = strings.TrimSpace(*p.CustomerName)
	}
	if p.Size != nil {
		r.Size = *p.Size
	}
	if p.VariantNumber != nil {
		r.VariantNumber = *p.VariantNumber
	}
	if p.Color != nil {
		r.Color = *p.Color
	}
	if p.Material != nil {
		r.Material = *p.Material
	}
	if p.Quantity != nil {
		r.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		r.UnitPrice = *p.UnitPrice
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Paid != nil {
		r.Paid = *p.Paid
	}
	return r
}

// Filter narrows a record listing. Zero value means everything.
type Filter struct {
	Paid   *bool
	Search string
}

// Match reports whether r passes the filter. Search is a case-insensitive
// substring match on the customer name.
func (f Filter) Match(r Record) bool {
	if f.Paid != nil && r.Paid != *f.Paid {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(r.CustomerName), strings.ToLower(f.Search)) {
		return false
	}
	return true
}
