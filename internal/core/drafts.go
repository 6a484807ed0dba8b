package core

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/backoffice/internal/export"
	"github.com/JonMunkholm/backoffice/internal/logging"
)

type draft struct {
	id        string
	owner     string
	cfg       export.Config
	rev       int // bumped on every committed action
	createdAt time.Time
	touchedAt time.Time
}

// DraftView is the client-facing state of a draft.
type DraftView struct {
	ID        string         `json:"id" msgpack:"id"`
	Config    export.Config  `json:"config" msgpack:"-"`
	Summary   export.Summary `json:"summary" msgpack:"summary"`
	CreatedAt time.Time      `json:"createdAt" msgpack:"createdAt"`
	ExpiresAt time.Time      `json:"expiresAt" msgpack:"expiresAt"`
}

// ScheduledExport acknowledges a scheduled export.
type ScheduledExport struct {
	ID      string         `json:"id"`
	DraftID string         `json:"draftId"`
	Status  string         `json:"status"`
	Summary export.Summary `json:"summary"`
}

// EstimateRequest describes a config to estimate without a draft: the
// dataset's starting config followed by the actions in order.
type EstimateRequest struct {
	Dataset string          `json:"dataset"`
	Actions []export.Action `json:"actions"`
}

// CreateDraft starts a draft for owner on datasetID.
func (s *Service) CreateDraft(ctx context.Context, owner, datasetID string) (DraftView, error) {
	if owner == "" {
		return DraftView{}, newError(KindUnauthorized, msgUnauthorized, nil)
	}
	ds, ok := s.catalog.Lookup(datasetID)
	if !ok {
		return DraftView{}, badRequest(fmt.Errorf("%w: %s", export.ErrUnknownDataset, datasetID))
	}

	now := s.now()
	cfg, err := export.NewConfig(ds, now)
	if err != nil {
		return DraftView{}, badRequest(err)
	}

	d := &draft{id: newID(), owner: owner, cfg: cfg, createdAt: now, touchedAt: now}

	s.mu.Lock()
	if len(s.drafts) >= s.opts.MaxDrafts {
		s.mu.Unlock()
		return DraftView{}, newError(KindUnavailable, "Too many export drafts in progress", ErrTooManyDrafts)
	}
	s.drafts[d.id] = d
	s.mu.Unlock()

	logging.WithFields(ctx, "draft_id", d.id, "dataset", ds.ID).Info("export draft created")
	return s.view(ctx, d.id, d.cfg, d.createdAt, d.touchedAt)
}

// GetDraft returns the current state of a draft.
func (s *Service) GetDraft(ctx context.Context, owner, id string) (DraftView, error) {
	d, err := s.touch(owner, id)
	if err != nil {
		return DraftView{}, err
	}
	return s.view(ctx, d.id, d.cfg, d.createdAt, d.touchedAt)
}

// ApplyDraftAction runs one action against a draft and returns the new
// state. A rejected action leaves the draft unchanged, and so does a failed
// estimate: the new config is only committed once its summary is computed.
func (s *Service) ApplyDraftAction(ctx context.Context, owner, id string, action export.Action) (DraftView, error) {
	for attempt := 0; attempt < maxDraftCommitAttempts; attempt++ {
		now := s.now()

		s.mu.Lock()
		d, err := s.lookupLocked(owner, id, now)
		if err != nil {
			s.mu.Unlock()
			return DraftView{}, err
		}
		next, err := export.Apply(s.catalog, d.cfg, action)
		if err != nil {
			s.mu.Unlock()
			return DraftView{}, badRequest(err)
		}
		rev := d.rev
		s.mu.Unlock()

		summary, err := s.summarize(ctx, next)
		if err != nil {
			return DraftView{}, err
		}

		s.mu.Lock()
		d, err = s.lookupLocked(owner, id, now)
		if err != nil {
			s.mu.Unlock()
			return DraftView{}, err
		}
		if d.rev != rev {
			// Another action landed while estimating; re-apply on top of it.
			s.mu.Unlock()
			continue
		}
		d.cfg = next
		d.rev++
		d.touchedAt = now
		snapshot := *d
		s.mu.Unlock()

		logging.WithFields(ctx, "draft_id", id, "action", action.Type).Debug("export draft updated")
		return DraftView{
			ID:        snapshot.id,
			Config:    snapshot.cfg,
			Summary:   summary,
			CreatedAt: snapshot.createdAt.UTC(),
			ExpiresAt: snapshot.touchedAt.Add(s.opts.DraftTTL).UTC(),
		}, nil
	}
	return DraftView{}, newError(KindConflict, "Export draft is being edited concurrently", ErrDraftBusy)
}

// DeleteDraft discards a draft.
func (s *Service) DeleteDraft(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookupLocked(owner, id, s.now()); err != nil {
		return err
	}
	delete(s.drafts, id)
	logging.WithFields(ctx, "draft_id", id).Info("export draft deleted")
	return nil
}

// DraftSummary returns the summary of a draft.
func (s *Service) DraftSummary(ctx context.Context, owner, id string) (export.Summary, error) {
	d, err := s.touch(owner, id)
	if err != nil {
		return export.Summary{}, err
	}
	return s.summarize(ctx, d.cfg)
}

// DraftTemplate renders the CSV header template of a draft and returns it
// with its download file name.
func (s *Service) DraftTemplate(ctx context.Context, owner, id string) ([]byte, string, error) {
	d, err := s.touch(owner, id)
	if err != nil {
		return nil, "", err
	}
	ds, _ := s.catalog.Lookup(d.cfg.Dataset)

	var buf bytes.Buffer
	if err := export.WriteTemplate(&buf, ds, d.cfg); err != nil {
		return nil, "", badRequest(err)
	}
	return buf.Bytes(), export.TemplateFileName(ds), nil
}

// ScheduleExport checks that a draft is ready for export and records the
// request. No file is produced.
func (s *Service) ScheduleExport(ctx context.Context, owner, id string) (ScheduledExport, error) {
	d, err := s.touch(owner, id)
	if err != nil {
		return ScheduledExport{}, err
	}
	ds, _ := s.catalog.Lookup(d.cfg.Dataset)
	if err := d.cfg.ReadyForExport(ds); err != nil {
		return ScheduledExport{}, badRequest(err)
	}

	summary, err := s.summarize(ctx, d.cfg)
	if err != nil {
		return ScheduledExport{}, err
	}

	job := ScheduledExport{ID: newID(), DraftID: id, Status: "scheduled", Summary: summary}

	logging.WithFields(ctx,
		"export_id", job.ID,
		"draft_id", id,
		"dataset", d.cfg.Dataset,
		"format", d.cfg.Format,
		"destination", d.cfg.Destination,
		"estimated_rows", summary.EstimatedRows,
	).Info("export scheduled")

	s.logAuditBestEffort(ctx, AuditLogParams{
		Action:     ActionExportSchedule,
		UserID:     owner,
		EntityType: "export_draft",
		EntityID:   id,
		Reason:     fmt.Sprintf("%s as %s via %s", d.cfg.Dataset, d.cfg.Format, d.cfg.Destination),
	})
	return job, nil
}

// EstimateConfig summarizes a config built from req without storing it.
// An unknown or disabled dataset yields a not-computable summary.
func (s *Service) EstimateConfig(ctx context.Context, req EstimateRequest) (export.Summary, error) {
	ds, ok := s.catalog.Lookup(req.Dataset)
	if !ok || !ds.Enabled {
		return s.summarize(ctx, export.Config{Dataset: req.Dataset})
	}

	cfg, err := export.NewConfig(ds, s.now())
	if err != nil {
		return export.Summary{}, badRequest(err)
	}
	for i, a := range req.Actions {
		if cfg, err = export.Apply(s.catalog, cfg, a); err != nil {
			return export.Summary{}, badRequest(fmt.Errorf("action %d: %w", i, err))
		}
	}
	return s.summarize(ctx, cfg)
}

// DraftCount returns the number of live drafts.
func (s *Service) DraftCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// SweepDrafts removes drafts idle for longer than the draft TTL and returns
// how many were removed.
func (s *Service) SweepDrafts(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, d := range s.drafts {
		if s.expired(d, now) {
			delete(s.drafts, id)
			removed++
		}
	}
	return removed
}

// touch looks up a draft, refreshes its idle timer and returns a copy.
func (s *Service) touch(owner, id string) (draft, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookupLocked(owner, id, now)
	if err != nil {
		return draft{}, err
	}
	d.touchedAt = now
	return *d, nil
}

// lookupLocked finds a live draft of owner. Callers hold s.mu.
func (s *Service) lookupLocked(owner, id string, now time.Time) (*draft, error) {
	d, ok := s.drafts[id]
	if !ok || d.owner != owner || s.expired(d, now) {
		return nil, newError(KindNotFound, "Export draft not found", ErrDraftNotFound)
	}
	return d, nil
}

func (s *Service) expired(d *draft, now time.Time) bool {
	return now.Sub(d.touchedAt) > s.opts.DraftTTL
}

func (s *Service) view(ctx context.Context, id string, cfg export.Config, created, touched time.Time) (DraftView, error) {
	summary, err := s.summarize(ctx, cfg)
	if err != nil {
		return DraftView{}, err
	}
	return DraftView{
		ID:        id,
		Config:    cfg,
		Summary:   summary,
		CreatedAt: created.UTC(),
		ExpiresAt: touched.Add(s.opts.DraftTTL).UTC(),
	}, nil
}
