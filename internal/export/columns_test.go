package export

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// checkPartition fails the test unless selected and available split the
// dataset's fields exactly.
func checkPartition(t *testing.T, ds *Dataset, cs ColumnSelection) {
	t.Helper()
	selected, available := cs.Selected(), cs.Available()

	for _, key := range selected {
		if slices.Contains(available, key) {
			t.Errorf("%s is both selected and available", key)
		}
	}
	union := append(slices.Clone(selected), available...)
	slices.Sort(union)
	all := ds.FieldKeys()
	slices.Sort(all)
	if diff := cmp.Diff(all, union); diff != "" {
		t.Errorf("selected ∪ available != fields (-fields +union):\n%s", diff)
	}
}

func TestColumnSelection_PartitionHolds(t *testing.T) {
	ds := testDataset()
	cs := NewColumnSelection(ds, ds.DefaultColumns()...)
	checkPartition(t, ds, cs)

	steps := []struct {
		name string
		fn   func(ColumnSelection) ColumnSelection
	}{
		{"toggle on", func(c ColumnSelection) ColumnSelection { return c.Toggle("customer_email") }},
		{"toggle off", func(c ColumnSelection) ColumnSelection { return c.Toggle("order_id") }},
		{"toggle unknown", func(c ColumnSelection) ColumnSelection { return c.Toggle("nope") }},
		{"remove", func(c ColumnSelection) ColumnSelection { return c.Remove("total") }},
		{"remove unselected", func(c ColumnSelection) ColumnSelection { return c.Remove("item_count") }},
		{"move", func(c ColumnSelection) ColumnSelection { return c.Move("customer_email", 0) }},
		{"move out of range", func(c ColumnSelection) ColumnSelection { return c.Move("channel", 99) }},
		{"select all", func(c ColumnSelection) ColumnSelection { return c.SelectAll() }},
		{"clear all", func(c ColumnSelection) ColumnSelection { return c.ClearAll() }},
		{"toggle after clear", func(c ColumnSelection) ColumnSelection { return c.Toggle("item_count") }},
	}

	for _, step := range steps {
		cs = step.fn(cs)
		t.Run(step.name, func(t *testing.T) {
			checkPartition(t, ds, cs)
		})
	}
}

func TestColumnSelection_ToggleInvolution(t *testing.T) {
	ds := testDataset()
	start := NewColumnSelection(ds, ds.DefaultColumns()...)

	for _, key := range ds.FieldKeys() {
		t.Run(key, func(t *testing.T) {
			twice := start.Toggle(key).Toggle(key)

			got := twice.Selected()
			want := start.Selected()
			slices.Sort(got)
			slices.Sort(want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("membership changed (-want +got):\n%s", diff)
			}
		})
	}

	// A deselected-then-reselected column moves to the end.
	got := start.Toggle("order_id").Toggle("order_id").Selected()
	if got[len(got)-1] != "order_id" {
		t.Errorf("re-added column at %v, want last", got)
	}
}

func TestColumnSelection_ToggleLeavesOthersInPlace(t *testing.T) {
	ds := testDataset()
	cs := NewColumnSelection(ds, "order_id", "channel", "total")

	got := cs.Toggle("channel").Selected()
	want := []string{"order_id", "total"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Toggle(off) mismatch (-want +got):\n%s", diff)
	}

	got = cs.Toggle("tips").Selected()
	if diff := cmp.Diff([]string{"order_id", "channel", "total"}, got); diff != "" {
		t.Errorf("Toggle(unknown) changed selection (-want +got):\n%s", diff)
	}
}

func TestColumnSelection_Move(t *testing.T) {
	ds := testDataset()
	cs := NewColumnSelection(ds, "order_id", "channel", "total", "placed_at")

	tests := []struct {
		name  string
		key   string
		index int
		want  []string
	}{
		{"to front", "total", 0, []string{"total", "order_id", "channel", "placed_at"}},
		{"to back", "order_id", 3, []string{"channel", "total", "placed_at", "order_id"}},
		{"clamped high", "channel", 42, []string{"order_id", "total", "placed_at", "channel"}},
		{"clamped low", "placed_at", -5, []string{"placed_at", "order_id", "channel", "total"}},
		{"same place", "channel", 1, []string{"order_id", "channel", "total", "placed_at"}},
		{"unselected ignored", "item_count", 0, []string{"order_id", "channel", "total", "placed_at"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cs.Move(tt.key, tt.index).Selected()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Move(%s, %d) mismatch (-want +got):\n%s", tt.key, tt.index, diff)
			}
		})
	}

	if diff := cmp.Diff([]string{"order_id", "channel", "total", "placed_at"}, cs.Selected()); diff != "" {
		t.Errorf("Move() modified receiver (-want +got):\n%s", diff)
	}
}

func TestColumnSelection_AvailableInNativeOrder(t *testing.T) {
	ds := testDataset()
	cs := NewColumnSelection(ds, "total", "order_id", "total", "bogus")

	if diff := cmp.Diff([]string{"total", "order_id"}, cs.Selected()); diff != "" {
		t.Errorf("Selected() mismatch (-want +got):\n%s", diff)
	}
	want := []string{"placed_at", "channel", "item_count", "is_first_order", "customer_email", "customer_name"}
	if diff := cmp.Diff(want, cs.Available()); diff != "" {
		t.Errorf("Available() mismatch (-want +got):\n%s", diff)
	}
}

func TestColumnSelection_MarshalJSON(t *testing.T) {
	ds := testDataset()
	cs := NewColumnSelection(ds).SelectAll().ClearAll().Toggle("total")

	b, err := json.Marshal(cs)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got struct {
		Selected  []string `json:"selected"`
		Available []string `json:"available"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff([]string{"total"}, got.Selected); diff != "" {
		t.Errorf("selected mismatch (-want +got):\n%s", diff)
	}
	if len(got.Available) != len(ds.Fields)-1 {
		t.Errorf("len(available) = %d, want %d", len(got.Available), len(ds.Fields)-1)
	}
}
