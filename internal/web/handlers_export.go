package web

import (
	"net/http"

	"github.com/JonMunkholm/backoffice/internal/core"
	"github.com/JonMunkholm/backoffice/internal/export"
	"github.com/go-chi/chi/v5"
)

// CreateDraftRequest is the body of POST /api/export/drafts.
type CreateDraftRequest struct {
	Dataset string `json:"dataset"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req core.EstimateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, "")
		return
	}

	summary, err := s.service.EstimateConfig(r.Context(), req)
	if err != nil {
		respondError(w, r, err, "Failed to estimate export")
		return
	}
	s.writeSummary(w, r, summary)
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, "")
		return
	}

	view, err := s.service.CreateDraft(r.Context(), core.GetUserIDFromContext(r.Context()), req.Dataset)
	if err != nil {
		respondError(w, r, err, "Failed to create export draft")
		return
	}
	w.Header().Set("Location", "/api/export/drafts/"+view.ID)
	writeNegotiated(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetDraft(r.Context(), core.GetUserIDFromContext(r.Context()), chi.URLParam(r, "draftID"))
	if err != nil {
		respondError(w, r, err, "Failed to load export draft")
		return
	}
	writeNegotiated(w, r, http.StatusOK, view)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteDraft(r.Context(), core.GetUserIDFromContext(r.Context()), chi.URLParam(r, "draftID")); err != nil {
		respondError(w, r, err, "Failed to delete export draft")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDraftAction applies one builder edit. HTMX callers get the refreshed
// summary card; API callers get the full draft state.
func (s *Server) handleDraftAction(w http.ResponseWriter, r *http.Request) {
	var action export.Action
	if err := decodeJSON(w, r, &action); err != nil {
		respondError(w, r, err, "")
		return
	}

	view, err := s.service.ApplyDraftAction(r.Context(), core.GetUserIDFromContext(r.Context()), chi.URLParam(r, "draftID"), action)
	if err != nil {
		respondError(w, r, err, "Failed to update export draft")
		return
	}

	if isHTMX(r) {
		writeHTML(w, r, http.StatusOK, export.SummaryCard(view.Summary))
		return
	}
	writeNegotiated(w, r, http.StatusOK, view)
}

func (s *Server) handleDraftSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.DraftSummary(r.Context(), core.GetUserIDFromContext(r.Context()), chi.URLParam(r, "draftID"))
	if err != nil {
		respondError(w, r, err, "Failed to summarize export draft")
		return
	}
	s.writeSummary(w, r, summary)
}

// handleDraftTemplate downloads the CSV header row of the selected columns.
func (s *Server) handleDraftTemplate(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.service.DraftTemplate(r.Context(), core.GetUserIDFromContext(r.Context()), chi.URLParam(r, "draftID"))
	if err != nil {
		respondError(w, r, err, "Failed to build export template")
		return
	}

	attachment(w, "text/csv; charset=utf-8", filename)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		respondWriteFailure(r, err)
	}
}

func (s *Server) handleScheduleExport(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)

	job, err := s.service.ScheduleExport(ctx, core.GetUserIDFromContext(ctx), chi.URLParam(r, "draftID"))
	if err != nil {
		respondError(w, r, err, "Failed to schedule export")
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// writeSummary writes a summary as an HTML card, msgpack or JSON.
func (s *Server) writeSummary(w http.ResponseWriter, r *http.Request, summary export.Summary) {
	switch {
	case wantsMsgpack(r):
		writeMsgpack(w, r, http.StatusOK, summary)
	case wantsHTML(r):
		writeHTML(w, r, http.StatusOK, export.SummaryCard(summary))
	default:
		writeJSON(w, http.StatusOK, summary)
	}
}
