package database

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestDecimalNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0.00", "29.00", "50.00", "129.99"} {
		n, err := decimalToNumeric(decimal.RequireFromString(s))
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if !n.Valid {
			t.Fatalf("%s: numeric not valid", s)
		}
		d, err := numericToDecimal(n)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if d.StringFixed(2) != s {
			t.Errorf("got %s, want %s", d.StringFixed(2), s)
		}
	}
}

func TestDecimalToNumeric_RejectsSubCent(t *testing.T) {
	if _, err := decimalToNumeric(decimal.RequireFromString("49.995")); err == nil {
		t.Error("expected an error instead of silent rounding")
	}
	if _, err := decimalToNumeric(decimal.RequireFromString("50.000")); err != nil {
		t.Errorf("trailing zeros are whole cents: %v", err)
	}
}

func TestNumericToDecimal_Null(t *testing.T) {
	d, err := numericToDecimal(pgtype.Numeric{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsZero() {
		t.Errorf("got %s, want 0", d)
	}
}

func TestNullHelpers(t *testing.T) {
	if nullText("").Valid {
		t.Error("empty string should be NULL")
	}
	if !nullText("M").Valid {
		t.Error("non-empty string should be valid")
	}
	if nullInt4(0).Valid {
		t.Error("zero model number should be NULL")
	}
	if !nullInt4(2).Valid {
		t.Error("positive model number should be valid")
	}
}
