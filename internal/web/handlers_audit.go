package web

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/backoffice/internal/core"
)

// handleAuditLog returns the caller's recent audit entries.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 100)

	entries, err := s.service.GetUserAuditLog(r.Context(), core.GetUserIDFromContext(r.Context()), limit)
	if err != nil {
		respondError(w, r, err, "Failed to load audit log")
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}
	writeNegotiated(w, r, http.StatusOK, entries)
}

// handleAuditLogExport downloads the caller's audit entries as CSV.
func (s *Server) handleAuditLogExport(w http.ResponseWriter, r *http.Request) {
	userID := core.GetUserIDFromContext(r.Context())
	entries, err := s.service.GetUserAuditLog(r.Context(), userID, parseIntParam(r, "limit", 1000))
	if err != nil {
		respondError(w, r, err, "Failed to load audit log")
		return
	}

	attachment(w, "text/csv; charset=utf-8", "audit_log.csv")
	w.WriteHeader(http.StatusOK)

	csvWriter := csv.NewWriter(w)
	_ = csvWriter.Write([]string{
		"ID", "Timestamp", "Action", "Severity",
		"Entity Type", "Entity ID", "IP Address", "User Agent", "Reason",
	})
	for _, e := range entries {
		_ = csvWriter.Write([]string{
			e.ID,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			string(e.Action),
			string(e.Severity),
			e.EntityType,
			e.EntityID,
			e.IPAddress,
			e.UserAgent,
			e.Reason,
		})
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		respondWriteFailure(r, fmt.Errorf("audit csv: %w", err))
	}
}
