package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/backoffice/internal/logging"
	"github.com/JonMunkholm/backoffice/internal/store"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionAllergenDelete AuditAction = "allergen_delete"
	ActionExportSchedule AuditAction = "export_schedule"
	ActionSessionCreate  AuditAction = "session_create"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID         string        `json:"id"`
	Action     AuditAction   `json:"action"`
	Severity   AuditSeverity `json:"severity"`
	UserID     string        `json:"userId,omitempty"`
	EntityType string        `json:"entityType,omitempty"`
	EntityID   string        `json:"entityId,omitempty"`
	IPAddress  string        `json:"ipAddress,omitempty"`
	UserAgent  string        `json:"userAgent,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
// IPAddress and UserAgent default to the values stored in the context.
type AuditLogParams struct {
	Action     AuditAction
	UserID     string
	EntityType string
	EntityID   string
	IPAddress  string
	UserAgent  string
	Reason     string
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionAllergenDelete:
		return SeverityHigh
	case ActionExportSchedule, ActionSessionCreate:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// LogAudit creates a new audit log entry.
func (s *Service) LogAudit(ctx context.Context, params AuditLogParams) (*AuditEntry, error) {
	if params.IPAddress == "" {
		params.IPAddress = GetIPAddressFromContext(ctx)
	}
	if params.UserAgent == "" {
		params.UserAgent = GetUserAgentFromContext(ctx)
	}

	entry := &AuditEntry{
		ID:         newID(),
		Action:     params.Action,
		Severity:   determineSeverity(params.Action),
		UserID:     params.UserID,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
		Reason:     params.Reason,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.RecordAudit(ctx, store.AuditRecord{
		ID:         entry.ID,
		Action:     string(entry.Action),
		Severity:   string(entry.Severity),
		UserID:     entry.UserID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		Reason:     entry.Reason,
		CreatedAt:  entry.CreatedAt,
	}); err != nil {
		return nil, err
	}
	return entry, nil
}

// logAuditBestEffort records an entry, logging a failure instead of
// returning it.
func (s *Service) logAuditBestEffort(ctx context.Context, params AuditLogParams) {
	if _, err := s.LogAudit(ctx, params); err != nil {
		logging.FromContext(ctx).Warn("audit log write failed",
			"action", params.Action,
			"entity_id", params.EntityID,
			"error", err,
		)
	}
}

// GetAuditLog returns the most recent entries, newest first.
func (s *Service) GetAuditLog(ctx context.Context, limit int) ([]AuditEntry, error) {
	return s.listAudit(ctx, store.AuditFilter{Limit: clampAuditLimit(limit)})
}

// GetUserAuditLog returns up to limit of the most recent entries recorded
// for userID, newest first.
func (s *Service) GetUserAuditLog(ctx context.Context, userID string, limit int) ([]AuditEntry, error) {
	if userID == "" {
		return nil, newError(KindUnauthorized, msgUnauthorized, nil)
	}
	entries, err := s.listAudit(ctx, store.AuditFilter{UserID: userID, Limit: clampAuditLimit(limit)})
	if err != nil {
		return nil, newError(KindInternal, "Failed to load audit log", err)
	}
	return entries, nil
}

func clampAuditLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 100
	}
	return limit
}

func (s *Service) listAudit(ctx context.Context, filter store.AuditFilter) ([]AuditEntry, error) {
	recs, err := s.store.ListAudit(ctx, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]AuditEntry, len(recs))
	for i, r := range recs {
		entries[i] = AuditEntry{
			ID:         r.ID,
			Action:     AuditAction(r.Action),
			Severity:   AuditSeverity(r.Severity),
			UserID:     r.UserID,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			IPAddress:  r.IPAddress,
			UserAgent:  r.UserAgent,
			Reason:     r.Reason,
			CreatedAt:  r.CreatedAt,
		}
	}
	return entries, nil
}
