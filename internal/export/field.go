package export

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// FieldType is the semantic type of a dataset field.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldNumber   FieldType = "number"
	FieldCurrency FieldType = "currency"
	FieldDatetime FieldType = "datetime"
	FieldEnum     FieldType = "enum"
	FieldBoolean  FieldType = "boolean"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldString, FieldNumber, FieldCurrency, FieldDatetime, FieldEnum, FieldBoolean:
		return true
	}
	return false
}

// Category groups fields in the builder UI. It carries no semantics.
type Category string

const (
	CategoryGeneral   Category = "general"
	CategoryFinancial Category = "financial"
	CategoryStatus    Category = "status"
	CategoryDates     Category = "dates"
	CategoryLocation  Category = "location"
	CategoryPII       Category = "pii"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryFinancial, CategoryStatus, CategoryDates, CategoryLocation, CategoryPII:
		return true
	}
	return false
}

// Field describes one exportable and filterable attribute of a dataset.
type Field struct {
	Key      string    `json:"key" yaml:"key"`
	Label    string    `json:"label" yaml:"label"`
	Type     FieldType `json:"type" yaml:"type"`
	Category Category  `json:"category" yaml:"category"`
	PII      bool      `json:"pii" yaml:"pii"`
	Values   []string  `json:"values,omitempty" yaml:"values"` // Allowed values for FieldEnum
	Default  bool      `json:"default" yaml:"default"`         // Selected when a config is created
}

// HasValue reports whether v is one of the field's enum values.
func (f Field) HasValue(v string) bool {
	return slices.Contains(f.Values, v)
}

// Dataset is a named collection of fields representing one exportable
// record type.
type Dataset struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Description   string    `json:"description,omitempty" yaml:"description"`
	Enabled       bool      `json:"enabled" yaml:"enabled"`
	RowCountLabel string    `json:"rowCountLabel" yaml:"row_count_label"`
	LastExported  time.Time `json:"lastExported,omitzero" yaml:"last_exported"`
	Popularity    int       `json:"popularity" yaml:"popularity"`
	RowsPerDay    int64     `json:"rowsPerDay" yaml:"rows_per_day"`
	Fields        []Field   `json:"fields" yaml:"fields"`
}

// Field returns the field with the given key.
func (d *Dataset) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether key belongs to the dataset.
func (d *Dataset) HasField(key string) bool {
	_, ok := d.Field(key)
	return ok
}

// FieldKeys returns all field keys in the dataset's native order.
func (d *Dataset) FieldKeys() []string {
	keys := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		keys[i] = f.Key
	}
	return keys
}

// DefaultColumns returns the keys of fields selected by default.
func (d *Dataset) DefaultColumns() []string {
	var keys []string
	for _, f := range d.Fields {
		if f.Default {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// PIIFields returns the keys of all fields flagged as personal data.
func (d *Dataset) PIIFields() []string {
	var keys []string
	for _, f := range d.Fields {
		if f.PII {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// validate checks dataset invariants before registration.
func (d *Dataset) validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("dataset id is required")
	}
	if d.RowsPerDay < 0 {
		return fmt.Errorf("dataset %s: rows_per_day must be non-negative", d.ID)
	}

	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if strings.TrimSpace(f.Key) == "" {
			return fmt.Errorf("dataset %s: field key is required", d.ID)
		}
		if seen[f.Key] {
			return fmt.Errorf("dataset %s: duplicate field key %q", d.ID, f.Key)
		}
		seen[f.Key] = true

		if !f.Type.Valid() {
			return fmt.Errorf("dataset %s: field %s has unknown type %q", d.ID, f.Key, f.Type)
		}
		if !f.Category.Valid() {
			return fmt.Errorf("dataset %s: field %s has unknown category %q", d.ID, f.Key, f.Category)
		}
		if f.Type == FieldEnum && len(f.Values) == 0 {
			return fmt.Errorf("dataset %s: enum field %s has no values", d.ID, f.Key)
		}
	}
	return nil
}
