package order

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func ptr[T any](v T) *T { return &v }

func TestRecordTotal(t *testing.T) {
	r := Record{Quantity: 2, UnitPrice: decimal.RequireFromString("50.00")}
	if r.Total().StringFixed(2) != "100.00" {
		t.Errorf("without add-on: got %s", r.Total().StringFixed(2))
	}

	r.Addon = &Addon{Type: "half", Price: decimal.RequireFromString("29.00")}
	if r.Total().StringFixed(2) != "129.00" {
		t.Errorf("with add-on: got %s", r.Total().StringFixed(2))
	}
}

func TestRecordGroupKey(t *testing.T) {
	id := uuid.New()
	if got := (Record{ID: id}).GroupKey(); got != id.String() {
		t.Errorf("legacy key: got %s", got)
	}
	if got := (Record{ID: id, GroupID: "g1"}).GroupKey(); got != "g1" {
		t.Errorf("group key: got %s", got)
	}
}

func TestRecordStoredObjects(t *testing.T) {
	r := Record{ProofURL: "http://s/proof.png", ImageURL: "http://s/img.png"}
	if got := r.StoredObjects(); len(got) != 1 || got[0] != r.ProofURL {
		t.Errorf("only the proof belongs to the order, got %v", got)
	}
	if got := (Record{}).StoredObjects(); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}

func TestPatchValidate_QuantityBoundary(t *testing.T) {
	if err := (Patch{Quantity: ptr(int32(0))}).Validate(); err != nil {
		t.Errorf("quantity 0 should be allowed on staff edit: %v", err)
	}

	err := (Patch{Quantity: ptr(int32(-1))}).Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["quantity"]; !ok {
		t.Errorf("expected quantity field error, got %v", ve.Fields)
	}
}

func TestPatchValidate_AccumulatesFields(t *testing.T) {
	err := Patch{
		CustomerName: ptr("   "),
		UnitPrice:    ptr(decimal.RequireFromString("-1")),
		Quantity:     ptr(int32(-3)),
	}.Validate()

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 3 {
		t.Errorf("expected 3 field errors, got %v", ve.Fields)
	}
	if !strings.HasPrefix(ve.Error(), "validation failed: name:") {
		t.Errorf("message should list fields in sorted order: %s", ve.Error())
	}
}

func TestPatchValidate_PriceInWholeCents(t *testing.T) {
	if err := (Patch{UnitPrice: ptr(decimal.RequireFromString("49.90"))}).Validate(); err != nil {
		t.Errorf("49.90 should be accepted: %v", err)
	}

	err := (Patch{UnitPrice: ptr(decimal.RequireFromString("49.995"))}).Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["price"] == "" {
		t.Fatalf("expected price field error, got %v", err)
	}
}

func TestPatchApply_LeavesIdentityAlone(t *testing.T) {
	orig := Record{
		ID:           uuid.New(),
		GroupID:      "g",
		CustomerName: "Ana",
		Quantity:     2,
		ProofURL:     "http://s/p.pdf",
	}

	got := Patch{CustomerName: ptr(" Bia "), Quantity: ptr(int32(0)), Paid: ptr(true)}.Apply(orig)

	if got.CustomerName != "Bia" || got.Quantity != 0 || !got.Paid {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.ID != orig.ID || got.GroupID != orig.GroupID || got.ProofURL != orig.ProofURL {
		t.Error("identity fields changed")
	}
	if orig.CustomerName != "Ana" {
		t.Error("original record mutated")
	}
}

func TestFilterMatch(t *testing.T) {
	r := Record{CustomerName: "Ana Souza", Paid: true}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty", Filter{}, true},
		{"paid match", Filter{Paid: ptr(true)}, true},
		{"paid mismatch", Filter{Paid: ptr(false)}, false},
		{"search case-insensitive", Filter{Search: "souza"}, true},
		{"search miss", Filter{Search: "bia"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(r); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("boom")

	up := &UploadError{Err: cause}
	if !errors.Is(up, cause) {
		t.Error("UploadError should unwrap to cause")
	}

	pe := &PersistenceError{Op: "insert order", Err: ErrNotFound}
	if !errors.Is(pe, ErrNotFound) {
		t.Error("PersistenceError should unwrap")
	}
	if pe.Error() != "insert order: order not found" {
		t.Errorf("message: %s", pe.Error())
	}
}
