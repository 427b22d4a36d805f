package order

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func rec(group string, minutes int, qty int32, price string) Record {
	return Record{
		ID:           uuid.New(),
		GroupID:      group,
		CustomerName: "customer-" + group,
		Quantity:     qty,
		UnitPrice:    decimal.RequireFromString(price),
		CreatedAt:    base.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestGroup_TwoSingletonsNewestFirst(t *testing.T) {
	older := rec("g-old", 0, 1, "50")
	newer := rec("g-new", 5, 1, "50")

	groups := Group([]Record{older, newer})

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Key != "g-new" || groups[1].Key != "g-old" {
		t.Errorf("order: got %s, %s; want g-new, g-old", groups[0].Key, groups[1].Key)
	}
}

func TestGroup_MultiMemberGroupsFirst(t *testing.T) {
	a1 := rec("multi", 0, 1, "50")
	a2 := rec("multi", 0, 2, "40")
	single := rec("single", 30, 1, "50")

	groups := Group([]Record{single, a1, a2})

	if groups[0].Key != "multi" {
		t.Fatalf("expected multi-member group first, got %s", groups[0].Key)
	}
	if len(groups[0].Records) != 2 {
		t.Errorf("members: got %d, want 2", len(groups[0].Records))
	}
	if groups[0].ItemCount != 3 {
		t.Errorf("item count: got %d, want 3", groups[0].ItemCount)
	}
	if groups[0].Total.StringFixed(2) != "130.00" {
		t.Errorf("total: got %s, want 130.00", groups[0].Total.StringFixed(2))
	}
}

func TestGroup_TotalIncludesAddon(t *testing.T) {
	r := rec("g", 0, 2, "50.00")
	r.Addon = &Addon{Type: "half", Price: decimal.RequireFromString("29.00")}

	groups := Group([]Record{r})

	if groups[0].Total.StringFixed(2) != "129.00" {
		t.Errorf("total: got %s, want 129.00", groups[0].Total.StringFixed(2))
	}
}

func TestGroup_LegacyRecordsUseOwnID(t *testing.T) {
	a := rec("", 0, 1, "10")
	b := rec("", 1, 1, "10")

	groups := Group([]Record{a, b})

	if len(groups) != 2 {
		t.Fatalf("expected 2 singleton groups, got %d", len(groups))
	}
	if groups[0].Key != b.ID.String() {
		t.Errorf("newest legacy record should come first")
	}
}

func TestGroup_RepresentativePaidIsFirstMember(t *testing.T) {
	first := rec("g", 0, 1, "10")
	first.Paid = true
	second := rec("g", 1, 1, "10")

	groups := Group([]Record{second, first})

	if !groups[0].Paid {
		t.Error("expected paid from first (earliest) member")
	}
	if groups[0].Records[0].ID != first.ID {
		t.Error("members should keep insertion order")
	}
}

func TestGroup_StableUnderPermutation(t *testing.T) {
	records := []Record{
		rec("a", 0, 1, "50"), rec("a", 0, 2, "50"),
		rec("b", 10, 1, "20"),
		rec("c", 10, 3, "15"),
		rec("d", 3, 1, "50"), rec("d", 4, 1, "50"), rec("d", 5, 1, "50"),
		rec("", 7, 1, "99"),
	}
	want := Group(records)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := slices.Clone(records)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := Group(shuffled)
		if len(got) != len(want) {
			t.Fatalf("group count: got %d, want %d", len(got), len(want))
		}
		for g := range want {
			if got[g].Key != want[g].Key {
				t.Fatalf("permutation %d: group %d key %s, want %s", i, g, got[g].Key, want[g].Key)
			}
			if got[g].ItemCount != want[g].ItemCount || !got[g].Total.Equal(want[g].Total) {
				t.Fatalf("permutation %d: aggregates differ for %s", i, want[g].Key)
			}
			for m := range want[g].Records {
				if got[g].Records[m].ID != want[g].Records[m].ID {
					t.Fatalf("permutation %d: member order differs in %s", i, want[g].Key)
				}
			}
		}
	}
}

func TestGroup_DoesNotMutateInput(t *testing.T) {
	records := []Record{rec("g", 5, 1, "1"), rec("g", 1, 1, "1")}
	before := slices.Clone(records)

	Group(records)

	for i := range records {
		if records[i].ID != before[i].ID {
			t.Fatal("input order changed")
		}
	}
}

func TestGroup_Empty(t *testing.T) {
	if got := Group(nil); len(got) != 0 {
		t.Errorf("expected no groups, got %d", len(got))
	}
}
