package export

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newFilterID generates filter ids. Tests replace it for stable ids.
var newFilterID = uuid.NewString

// ActiveFilter is one predicate applied to a dataset.
// Only the field key is stored; label and type come from the catalog.
type ActiveFilter struct {
	ID       string   `json:"filterId" msgpack:"filterId"`
	Field    string   `json:"field" msgpack:"field"`
	Operator Operator `json:"operator" msgpack:"operator"`
	Value    any      `json:"value" msgpack:"value"` // string, float64, bool, time.Time or []string
}

// FilterView is an ActiveFilter resolved against its dataset for display.
type FilterView struct {
	ID            string    `json:"filterId" msgpack:"filterId"`
	Field         string    `json:"field" msgpack:"field"`
	FieldLabel    string    `json:"fieldLabel" msgpack:"fieldLabel"`
	Type          FieldType `json:"type" msgpack:"type"`
	Operator      Operator  `json:"operator" msgpack:"operator"`
	OperatorLabel string    `json:"operatorLabel" msgpack:"operatorLabel"`
	Value         any       `json:"value" msgpack:"value"`
	PII           bool      `json:"pii" msgpack:"pii"`
}

// Resolve looks up label and type for display. A field missing from ds is
// shown by its key.
func (f ActiveFilter) Resolve(ds *Dataset) FilterView {
	v := FilterView{
		ID:            f.ID,
		Field:         f.Field,
		FieldLabel:    f.Field,
		Operator:      f.Operator,
		OperatorLabel: f.Operator.Label(),
		Value:         f.Value,
	}
	if ds != nil {
		if field, ok := ds.Field(f.Field); ok {
			v.FieldLabel = field.Label
			v.Type = field.Type
			v.PII = field.PII
		}
	}
	return v
}

// FilterList is an ordered list of filters combined with AND.
// The zero value is an empty list. Methods never modify the receiver.
type FilterList struct {
	items []ActiveFilter
}

// Len returns the number of filters.
func (l FilterList) Len() int { return len(l.items) }

// Items returns a copy of the filters in insertion order.
func (l FilterList) Items() []ActiveFilter {
	return slices.Clone(l.items)
}

// Get returns the filter with the given id.
func (l FilterList) Get(id string) (ActiveFilter, bool) {
	for _, f := range l.items {
		if f.ID == id {
			return f, true
		}
	}
	return ActiveFilter{}, false
}

// Add validates a new filter against ds and appends it with a fresh id.
func (l FilterList) Add(ds *Dataset, fieldKey string, op Operator, value any) (FilterList, ActiveFilter, error) {
	if ds == nil {
		return l, ActiveFilter{}, ErrUnknownDataset
	}
	field, ok := ds.Field(fieldKey)
	if !ok {
		return l, ActiveFilter{}, fmt.Errorf("%w: %s", ErrUnknownField, fieldKey)
	}
	if !Allowed(op, field.Type) {
		return l, ActiveFilter{}, fmt.Errorf("%w: %q on %s field %s", ErrOperatorNotAllowed, op.Label(), field.Type, field.Key)
	}

	normalized, err := normalizeValue(field, op, value)
	if err != nil {
		return l, ActiveFilter{}, fmt.Errorf("%w: %s: %v", ErrInvalidFilterValue, field.Key, err)
	}

	f := ActiveFilter{
		ID:       l.uniqueID(),
		Field:    field.Key,
		Operator: op,
		Value:    normalized,
	}

	items := make([]ActiveFilter, len(l.items), len(l.items)+1)
	copy(items, l.items)
	return FilterList{items: append(items, f)}, f, nil
}

// Remove drops the filter with the given id. Absent ids are ignored.
func (l FilterList) Remove(id string) FilterList {
	idx := slices.IndexFunc(l.items, func(f ActiveFilter) bool { return f.ID == id })
	if idx < 0 {
		return l
	}
	return FilterList{items: slices.Delete(slices.Clone(l.items), idx, idx+1)}
}

// Clear returns an empty list.
func (l FilterList) Clear() FilterList {
	return FilterList{}
}

// HasPII reports whether any filter targets a PII field of ds.
func (l FilterList) HasPII(ds *Dataset) bool {
	if ds == nil {
		return false
	}
	for _, f := range l.items {
		if field, ok := ds.Field(f.Field); ok && field.PII {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the list as a plain array.
func (l FilterList) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

func (l FilterList) uniqueID() string {
	for {
		id := newFilterID()
		if _, taken := l.Get(id); !taken {
			return id
		}
	}
}

// normalizeValue coerces a client-supplied value into the canonical Go type
// for the field and operator.
func normalizeValue(field Field, op Operator, value any) (any, error) {
	switch field.Type {
	case FieldString:
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("expected non-empty text")
		}
		return s, nil

	case FieldNumber, FieldCurrency:
		return toFloat(value)

	case FieldDatetime:
		return toTime(value)

	case FieldBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("expected true or false")
			}
			return b, nil
		}
		return nil, fmt.Errorf("expected true or false")

	case FieldEnum:
		values, err := toStrings(value)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("at least one value is required")
		}
		if op == OpEquals && len(values) != 1 {
			return nil, fmt.Errorf("%q takes exactly one value, use %q", OpEquals.Label(), OpIn.Label())
		}
		for _, v := range values {
			if !field.HasValue(v) {
				return nil, fmt.Errorf("invalid enum value %q", v)
			}
		}
		return values, nil
	}
	return nil, fmt.Errorf("unsupported field type %q", field.Type)
}

func toFloat(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number")
	}
	return f, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	}
	return time.Time{}, fmt.Errorf("expected a date")
}

// toStrings accepts a single string or a list and returns deduplicated
// values in their original order.
func toStrings(value any) ([]string, error) {
	var raw []string
	switch v := value.(type) {
	case string:
		raw = []string{v}
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of text values")
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("expected a value or list of values")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}
