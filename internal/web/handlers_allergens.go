package web

import (
	"net/http"

	"github.com/JonMunkholm/backoffice/internal/core"
	"github.com/go-chi/chi/v5"
)

// handleDeleteAllergen removes an allergen the caller's merchant owns.
func (s *Server) handleDeleteAllergen(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	userID := core.GetUserIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	if err := s.service.DeleteAllergen(ctx, userID, id); err != nil {
		respondError(w, r, err, "Failed to delete allergen")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
