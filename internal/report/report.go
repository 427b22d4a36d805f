// Package report compiles the printable order report: one row per record
// plus the summary counters the staff reconcile against.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/order"
	"github.com/shopspring/decimal"
)

// Row is one record as printed.
type Row struct {
	ID           uuid.UUID       `json:"id"`
	GroupKey     string          `json:"group_key"`
	CustomerName string          `json:"customer_name"`
	Size         string          `json:"size"`
	Color        string          `json:"color"`
	VariantName  string          `json:"variant_name"`
	Quantity     int32           `json:"quantity"`
	AddonLabel   string          `json:"addon_label"`
	Total        decimal.Decimal `json:"total"`
	Paid         bool            `json:"paid"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Summary struct {
	Orders int             `json:"total_orders"`
	Items  int64           `json:"total_items"`
	Value  decimal.Decimal `json:"total_value"`
	Paid   int             `json:"paid"`
	Unpaid int             `json:"unpaid"`
}

type Report struct {
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"rows"`
	Summary     Summary   `json:"summary"`
}

// Compiler turns records into a Report. Names are resolved against the
// catalog so retired variants and add-ons still print something readable.
type Compiler struct {
	catalog *catalog.Catalog
	title   string
	now     func() time.Time
}

func NewCompiler(c *catalog.Catalog, title string) *Compiler {
	return &Compiler{catalog: c, title: title, now: time.Now}
}

// Compile lists every record individually, in the given order. The input
// is not modified.
func (c *Compiler) Compile(records []order.Record) Report {
	rep := Report{
		Title:       c.title,
		GeneratedAt: c.now(),
		Rows:        make([]Row, 0, len(records)),
		Summary:     Summary{Value: decimal.Zero},
	}

	for _, r := range records {
		row := Row{
			ID:           r.ID,
			GroupKey:     r.GroupKey(),
			CustomerName: r.CustomerName,
			Size:         r.Size,
			Color:        r.Color,
			VariantName:  c.catalog.VariantName(r.VariantNumber),
			Quantity:     r.Quantity,
			AddonLabel:   "-",
			Total:        r.Total(),
			Paid:         r.Paid,
			CreatedAt:    r.CreatedAt,
		}
		if r.Addon != nil {
			row.AddonLabel = c.catalog.AddonLabel(r.Addon.Type)
		}
		rep.Rows = append(rep.Rows, row)

		rep.Summary.Orders++
		rep.Summary.Items += int64(r.Quantity)
		rep.Summary.Value = rep.Summary.Value.Add(row.Total)
		if r.Paid {
			rep.Summary.Paid++
		} else {
			rep.Summary.Unpaid++
		}
	}
	return rep
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

func columns() []string {
	return []string{"Customer", "Size", "Color", "Model", "Qty", "Add-on", "Total", "Paid"}
}

func (r Row) cells() []string {
	return []string{
		r.CustomerName,
		r.Size,
		r.Color,
		r.VariantName,
		decimal.NewFromInt32(r.Quantity).String(),
		r.AddonLabel,
		money(r.Total),
		yesNo(r.Paid),
	}
}
