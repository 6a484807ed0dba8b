package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/backoffice/internal/core"
	"github.com/JonMunkholm/backoffice/internal/export"
	"github.com/go-chi/chi/v5"
)

var errDatasetNotFound = &core.Error{
	Kind:    core.KindNotFound,
	Message: "Dataset not found",
	Cause:   export.ErrUnknownDataset,
}

// DatasetListItem is one entry of the dataset picker.
type DatasetListItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Enabled       bool      `json:"enabled"`
	RowCountLabel string    `json:"rowCountLabel"`
	LastExported  time.Time `json:"lastExported,omitzero"`
	Popularity    int       `json:"popularity"`
	FieldCount    int       `json:"fieldCount"`
}

// OperatorOption is one entry of a filter operator menu.
type OperatorOption struct {
	Code  export.Operator `json:"code"`
	Label string          `json:"label"`
}

// DatasetDetail is a dataset with the operator menu for each field type
// it contains.
type DatasetDetail struct {
	*export.Dataset
	Operators map[export.FieldType][]OperatorOption `json:"operators"`
}

// handleHealth reports whether the store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Health(r.Context()); err != nil {
		respondError(w, r, err, "Database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"drafts":    s.service.DraftCount(),
		"estimates": s.service.EstimateStatus(),
	})
}

// handleListDatasets returns every dataset in catalog order, disabled ones
// included so the picker can show them greyed out.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets := s.service.Catalog().Datasets()

	items := make([]DatasetListItem, len(datasets))
	for i, ds := range datasets {
		items[i] = DatasetListItem{
			ID:            ds.ID,
			Name:          ds.Name,
			Description:   ds.Description,
			Enabled:       ds.Enabled,
			RowCountLabel: ds.RowCountLabel,
			LastExported:  ds.LastExported,
			Popularity:    ds.Popularity,
			FieldCount:    len(ds.Fields),
		}
	}
	writeNegotiated(w, r, http.StatusOK, items)
}

// handleGetDataset returns one dataset's fields and operator menus.
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")
	ds, ok := s.service.Catalog().Lookup(id)
	if !ok {
		respondError(w, r, errDatasetNotFound, "")
		return
	}

	ops := make(map[export.FieldType][]OperatorOption)
	for _, f := range ds.Fields {
		if _, seen := ops[f.Type]; seen {
			continue
		}
		for _, op := range export.Operators(f.Type) {
			ops[f.Type] = append(ops[f.Type], OperatorOption{Code: op, Label: op.Label()})
		}
	}

	writeNegotiated(w, r, http.StatusOK, DatasetDetail{Dataset: ds, Operators: ops})
}
