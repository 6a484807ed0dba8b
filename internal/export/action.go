package export

import (
	"fmt"
	"time"
)

// ActionType names a Config transition.
type ActionType string

const (
	ActionSelectDataset    ActionType = "select_dataset"
	ActionSetDateRange     ActionType = "set_date_range"
	ActionSetGranularity   ActionType = "set_granularity"
	ActionAddFilter        ActionType = "add_filter"
	ActionRemoveFilter     ActionType = "remove_filter"
	ActionClearFilters     ActionType = "clear_filters"
	ActionToggleColumn     ActionType = "toggle_column"
	ActionRemoveColumn     ActionType = "remove_column"
	ActionSelectAllColumns ActionType = "select_all_columns"
	ActionClearColumns     ActionType = "clear_columns"
	ActionMoveColumn       ActionType = "move_column"
	ActionSetFormat        ActionType = "set_format"
	ActionSetDestination   ActionType = "set_destination"
	ActionAcknowledgePII   ActionType = "acknowledge_pii"
)

// Action is one user edit of a Config. Only the fields relevant to Type
// are read.
type Action struct {
	Type ActionType `json:"type"`

	Dataset string `json:"dataset,omitempty"`

	Start    time.Time `json:"start,omitzero"`
	End      time.Time `json:"end,omitzero"`
	Timezone string    `json:"timezone,omitempty"`

	Granularity Granularity `json:"granularity,omitempty"`
	Format      Format      `json:"format,omitempty"`
	Destination Destination `json:"destination,omitempty"`

	Field    string   `json:"field,omitempty"`
	Operator Operator `json:"operator,omitempty"`
	Value    any      `json:"value,omitempty"`
	FilterID string   `json:"filterId,omitempty"`

	Column string `json:"column,omitempty"`
	Index  int    `json:"index,omitempty"`
}

// Apply runs one action against cfg, resolving datasets through cat.
// On error the original cfg is returned unchanged.
func Apply(cat *Catalog, cfg Config, a Action) (Config, error) {
	ds, _ := cat.Lookup(cfg.Dataset)

	switch a.Type {
	case ActionSelectDataset:
		target, ok := cat.Lookup(a.Dataset)
		if !ok {
			return cfg, fmt.Errorf("%w: %s", ErrUnknownDataset, a.Dataset)
		}
		return cfg.SelectDataset(target)
	case ActionSetDateRange:
		return cfg.SetDateRange(a.Start, a.End, a.Timezone)
	case ActionSetGranularity:
		return cfg.SetGranularity(a.Granularity)
	case ActionSetFormat:
		return cfg.SetFormat(a.Format)
	case ActionSetDestination:
		return cfg.SetDestination(a.Destination)
	case ActionAddFilter:
		return cfg.AddFilter(ds, a.Field, a.Operator, a.Value)
	case ActionRemoveFilter:
		return cfg.RemoveFilter(a.FilterID), nil
	case ActionClearFilters:
		return cfg.ClearFilters(), nil
	case ActionToggleColumn:
		return cfg.ToggleColumn(ds, a.Column), nil
	case ActionRemoveColumn:
		return cfg.RemoveColumn(a.Column), nil
	case ActionSelectAllColumns:
		return cfg.SelectAllColumns(ds), nil
	case ActionClearColumns:
		return cfg.ClearColumns(), nil
	case ActionMoveColumn:
		return cfg.MoveColumn(a.Column, a.Index), nil
	case ActionAcknowledgePII:
		return cfg.AcknowledgePII(), nil
	}
	return cfg, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
}
