package export

import (
	"encoding/json"
	"slices"
)

// ColumnSelection partitions a dataset's fields into an ordered selected
// list and the unselected remainder. Keys outside the dataset are ignored
// by every operation. Methods never modify the receiver.
type ColumnSelection struct {
	fields   []string // dataset field keys, native order
	selected []string
}

// NewColumnSelection builds a selection over ds with the given keys selected
// in the given order. Unknown and repeated keys are dropped.
func NewColumnSelection(ds *Dataset, selected ...string) ColumnSelection {
	cs := ColumnSelection{}
	if ds == nil {
		return cs
	}
	cs.fields = ds.FieldKeys()
	for _, key := range selected {
		if cs.known(key) && !slices.Contains(cs.selected, key) {
			cs.selected = append(cs.selected, key)
		}
	}
	return cs
}

// Selected returns the selected keys in export order.
func (c ColumnSelection) Selected() []string {
	return slices.Clone(c.selected)
}

// Available returns the unselected keys in the dataset's native order.
func (c ColumnSelection) Available() []string {
	out := make([]string, 0, len(c.fields)-len(c.selected))
	for _, key := range c.fields {
		if !slices.Contains(c.selected, key) {
			out = append(out, key)
		}
	}
	return out
}

// IsSelected reports whether key is selected.
func (c ColumnSelection) IsSelected(key string) bool {
	return slices.Contains(c.selected, key)
}

// Len returns the number of selected columns.
func (c ColumnSelection) Len() int { return len(c.selected) }

// Toggle deselects key if selected, otherwise appends it.
func (c ColumnSelection) Toggle(key string) ColumnSelection {
	if !c.known(key) {
		return c
	}
	if c.IsSelected(key) {
		return c.Remove(key)
	}
	next := c.clone()
	next.selected = append(next.selected, key)
	return next
}

// Remove deselects key. No-op if it is not selected.
func (c ColumnSelection) Remove(key string) ColumnSelection {
	idx := slices.Index(c.selected, key)
	if idx < 0 {
		return c
	}
	next := c.clone()
	next.selected = slices.Delete(next.selected, idx, idx+1)
	return next
}

// SelectAll selects every field in native order.
func (c ColumnSelection) SelectAll() ColumnSelection {
	return ColumnSelection{
		fields:   c.fields,
		selected: slices.Clone(c.fields),
	}
}

// ClearAll deselects every field.
func (c ColumnSelection) ClearAll() ColumnSelection {
	return ColumnSelection{fields: c.fields}
}

// Move places a selected key at index within the selection. The index is
// clamped to the valid range. Unselected keys are ignored.
func (c ColumnSelection) Move(key string, index int) ColumnSelection {
	from := slices.Index(c.selected, key)
	if from < 0 {
		return c
	}
	index = max(0, min(index, len(c.selected)-1))
	if index == from {
		return c
	}

	next := c.clone()
	next.selected = slices.Delete(next.selected, from, from+1)
	next.selected = slices.Insert(next.selected, index, key)
	return next
}

// MarshalJSON encodes both halves of the partition.
func (c ColumnSelection) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Selected  []string `json:"selected"`
		Available []string `json:"available"`
	}{
		Selected:  append([]string{}, c.selected...),
		Available: c.Available(),
	})
}

func (c ColumnSelection) known(key string) bool {
	return slices.Contains(c.fields, key)
}

func (c ColumnSelection) clone() ColumnSelection {
	return ColumnSelection{
		fields:   c.fields,
		selected: slices.Clone(c.selected),
	}
}
