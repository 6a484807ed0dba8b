package export

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestApply_Sequence(t *testing.T) {
	sequentialIDs(t)
	cat := testCatalog(t)
	ds, _ := cat.Lookup("orders")
	cfg := testConfig(t, ds)

	actions := []Action{
		{Type: ActionAddFilter, Field: "channel", Operator: OpEquals, Value: []string{"dine_in"}},
		{Type: ActionAddFilter, Field: "total", Operator: OpGreaterEq, Value: 50},
		{Type: ActionToggleColumn, Column: "customer_email"},
		{Type: ActionMoveColumn, Column: "customer_email", Index: 0},
		{Type: ActionAcknowledgePII},
		{Type: ActionSetFormat, Format: FormatExcel},
		{Type: ActionSetDestination, Destination: DestinationEmail},
		{Type: ActionSetGranularity, Granularity: GranularityWeekly},
		{Type: ActionSetDateRange, Start: testNow.AddDate(0, 0, -7), End: testNow, Timezone: "UTC"},
		{Type: ActionRemoveFilter, FilterID: "f1"},
	}

	var err error
	for _, a := range actions {
		cfg, err = Apply(cat, cfg, a)
		if err != nil {
			t.Fatalf("Apply(%s) error = %v", a.Type, err)
		}
	}

	if cfg.Filters.Len() != 1 {
		t.Fatalf("Filters.Len() = %d, want 1", cfg.Filters.Len())
	}
	if f := cfg.Filters.Items()[0]; f.Field != "total" {
		t.Errorf("remaining filter = %s, want total", f.Field)
	}
	if got := cfg.Columns.Selected()[0]; got != "customer_email" {
		t.Errorf("first column = %s, want customer_email", got)
	}
	if !cfg.PIIAcknowledged {
		t.Error("PIIAcknowledged = false")
	}
	if cfg.Format != FormatExcel || cfg.Destination != DestinationEmail || cfg.Granularity != GranularityWeekly {
		t.Errorf("options = %s/%s/%s", cfg.Format, cfg.Destination, cfg.Granularity)
	}
	if cfg.Range.Days() != 7 {
		t.Errorf("Range.Days() = %d, want 7", cfg.Range.Days())
	}

	cfg, err = Apply(cat, cfg, Action{Type: ActionClearFilters})
	if err != nil || cfg.Filters.Len() != 0 {
		t.Errorf("clear_filters: Len() = %d, err = %v", cfg.Filters.Len(), err)
	}
}

func TestApply_Errors(t *testing.T) {
	cat := testCatalog(t)
	ds, _ := cat.Lookup("orders")
	cfg := testConfig(t, ds)

	tests := []struct {
		name    string
		action  Action
		wantErr error
	}{
		{"unknown type", Action{Type: "explode"}, ErrUnknownAction},
		{"unknown dataset", Action{Type: ActionSelectDataset, Dataset: "ghost"}, ErrUnknownDataset},
		{"disabled dataset", Action{Type: ActionSelectDataset, Dataset: "staff_shifts"}, ErrDatasetDisabled},
		{"bad operator", Action{Type: ActionAddFilter, Field: "channel", Operator: OpGreater, Value: "dine_in"}, ErrOperatorNotAllowed},
		{"bad range", Action{Type: ActionSetDateRange, Start: testNow, End: testNow.Add(-time.Hour)}, ErrInvalidDateRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(cat, cfg, tt.action)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Apply() error = %v, want %v", err, tt.wantErr)
			}
			if got.Dataset != cfg.Dataset || got.Filters.Len() != cfg.Filters.Len() {
				t.Error("failed Apply changed the config")
			}
		})
	}
}

func TestAction_UnmarshalJSON(t *testing.T) {
	raw := `{"type":"add_filter","field":"total","operator":"≥","value":50}`

	var a Action
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if a.Type != ActionAddFilter || a.Operator != OpGreaterEq {
		t.Errorf("Action = %+v", a)
	}
	if v, ok := a.Value.(float64); !ok || v != 50 {
		t.Errorf("Value = %#v, want 50", a.Value)
	}

	if err := json.Unmarshal([]byte(`{"type":"add_filter","operator":"~"}`), &a); err == nil {
		t.Error("Unmarshal() accepted an unknown operator")
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in   string
		want Operator
		ok   bool
	}{
		{"gte", OpGreaterEq, true},
		{"≥", OpGreaterEq, true},
		{">=", OpGreaterEq, true},
		{"=", OpEquals, true},
		{"Is Any Of", OpIn, true},
		{"≠", OpNotEquals, true},
		{"starts with", OpStartsWith, true},
		{"~=", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseOperator(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseOperator(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
