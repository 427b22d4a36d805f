package report

import (
	"bytes"
	"encoding/csv"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/order"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, 4, 20, 18, 30, 0, 0, time.UTC)

func testCompiler() *Compiler {
	c := NewCompiler(catalog.Default(), "Shirt orders")
	c.now = func() time.Time { return fixedNow }
	return c
}

func sampleRecords() []order.Record {
	return []order.Record{
		{
			ID: uuid.New(), GroupID: "g1", CustomerName: "Ana", Size: "M", Color: "Preto",
			VariantNumber: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("50.00"),
			Addon: &order.Addon{Type: "meia", Price: decimal.RequireFromString("29.00")},
			Paid:  true, CreatedAt: fixedNow.Add(-time.Hour),
		},
		{
			ID: uuid.New(), GroupID: "g2", CustomerName: "João", Size: "GG", Color: "Preto",
			VariantNumber: 7, Quantity: 1, UnitPrice: decimal.RequireFromString("50.00"),
			CreatedAt: fixedNow.Add(-2 * time.Hour),
		},
	}
}

func TestCompile(t *testing.T) {
	rep := testCompiler().Compile(sampleRecords())

	if len(rep.Rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rep.Rows))
	}
	if rep.Rows[0].Total.StringFixed(2) != "129.00" {
		t.Errorf("row total: got %s, want 129.00", rep.Rows[0].Total.StringFixed(2))
	}
	if rep.Rows[0].AddonLabel != "Meia Entrada" || rep.Rows[1].AddonLabel != "-" {
		t.Errorf("add-on labels: %q, %q", rep.Rows[0].AddonLabel, rep.Rows[1].AddonLabel)
	}
	if rep.Rows[1].VariantName != "Model 7" {
		t.Errorf("unknown variant name: %q", rep.Rows[1].VariantName)
	}

	s := rep.Summary
	if s.Orders != 2 || s.Items != 3 || s.Paid != 1 || s.Unpaid != 1 {
		t.Errorf("summary: %+v", s)
	}
	if s.Value.StringFixed(2) != "179.00" {
		t.Errorf("total value: got %s, want 179.00", s.Value.StringFixed(2))
	}
	if !rep.GeneratedAt.Equal(fixedNow) {
		t.Errorf("generated at: %v", rep.GeneratedAt)
	}
}

func TestCompile_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	before := slices.Clone(records)

	testCompiler().Compile(records)

	for i := range records {
		if records[i].ID != before[i].ID || !records[i].UnitPrice.Equal(before[i].UnitPrice) {
			t.Fatal("input changed")
		}
	}
}

func TestCompile_Empty(t *testing.T) {
	rep := testCompiler().Compile(nil)
	if len(rep.Rows) != 0 || rep.Summary.Orders != 0 || !rep.Summary.Value.IsZero() {
		t.Errorf("empty report: %+v", rep)
	}
}

func TestWritePDF(t *testing.T) {
	var records []order.Record
	for i := 0; i < 60; i++ {
		records = append(records, sampleRecords()...)
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, testCompiler().Compile(records)); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testCompiler().Compile(sampleRecords())); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	lines, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("lines: got %d, want 3", len(lines))
	}
	if lines[1][2] != "Ana" || lines[1][8] != "129.00" || lines[1][9] != "true" {
		t.Errorf("first row: %v", lines[1])
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, testCompiler().Compile(sampleRecords())); err != nil {
		t.Fatalf("write table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Shirt orders", "Ana", "R$ 129.00", "R$ 179.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(Report{GeneratedAt: fixedNow}, "pdf"); got != "orders-report-2026-04-20.pdf" {
		t.Errorf("filename: %q", got)
	}
}
