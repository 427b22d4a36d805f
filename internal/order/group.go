package order

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Composite is one customer submission rebuilt from the records sharing a
// group key. It is derived on every read and never stored.
type Composite struct {
	Key       string
	Records   []Record
	ItemCount int64
	Total     decimal.Decimal
	// Paid and CreatedAt are taken from the first member.
	Paid      bool
	CreatedAt time.Time
}

// Group partitions records by group key and returns the composites in
// display order: groups with more members first, then newest first.
//
// Members keep insertion order (creation time, then id), so the result is
// identical for any permutation of the input. The input slice is not
// modified.
func Group(records []Record) []Composite {
	buckets := make(map[string][]Record)
	var keys []string
	for _, r := range records {
		k := r.GroupKey()
		if _, seen := buckets[k]; !seen {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], r)
	}

	groups := make([]Composite, 0, len(keys))
	for _, k := range keys {
		members := buckets[k]
		slices.SortStableFunc(members, insertionOrder)
		groups = append(groups, newComposite(k, members))
	}

	slices.SortFunc(groups, func(a, b Composite) int {
		if c := cmp.Compare(len(b.Records), len(a.Records)); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return groups
}

func insertionOrder(a, b Record) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

func newComposite(key string, members []Record) Composite {
	c := Composite{
		Key:       key,
		Records:   members,
		Total:     decimal.Zero,
		Paid:      members[0].Paid,
		CreatedAt: members[0].CreatedAt,
	}
	for _, r := range members {
		c.ItemCount += int64(r.Quantity)
		c.Total = c.Total.Add(r.Total())
	}
	return c
}
