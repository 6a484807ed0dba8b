package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/backoffice/internal/export"
	"github.com/JonMunkholm/backoffice/internal/store"
	"github.com/google/uuid"
)

// Defaults applied by NewService for zero Options.
const (
	DefaultDraftTTL   = 2 * time.Hour
	DefaultMaxDrafts  = 1000
	DefaultSessionTTL = 12 * time.Hour
)

const msgUnauthorized = "Unauthorized - Please log in"

// maxDraftCommitAttempts bounds how often ApplyDraftAction re-applies an
// action that raced with another one on the same draft.
const maxDraftCommitAttempts = 3

var newID = uuid.NewString

// Options tune a Service. Zero values select the defaults.
type Options struct {
	DraftTTL        time.Duration
	MaxDrafts       int
	SummaryValidity time.Duration
	SessionTTL      time.Duration

	// MaxConcurrentEstimates and EstimateWait configure the EstimateLimiter.
	MaxConcurrentEstimates int
	EstimateWait           time.Duration

	// Estimator replaces the catalog-driven projector.
	Estimator export.Estimator
}

// Service provides the core business logic for the back office.
type Service struct {
	store     store.Store
	catalog   *export.Catalog
	estimator export.Estimator
	limiter   *EstimateLimiter
	opts      Options
	now       func() time.Time

	mu     sync.RWMutex
	drafts map[string]*draft
}

// NewService creates a new Service instance.
func NewService(st store.Store, cat *export.Catalog, opts Options) *Service {
	if opts.DraftTTL <= 0 {
		opts.DraftTTL = DefaultDraftTTL
	}
	if opts.MaxDrafts <= 0 {
		opts.MaxDrafts = DefaultMaxDrafts
	}
	if opts.SummaryValidity <= 0 {
		opts.SummaryValidity = export.DefaultSummaryValidity
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}

	est := opts.Estimator
	if est == nil {
		est = export.NewProjector(cat)
	}

	return &Service{
		store:     st,
		catalog:   cat,
		estimator: est,
		limiter:   NewEstimateLimiter(opts.MaxConcurrentEstimates, opts.EstimateWait),
		opts:      opts,
		now:       time.Now,
		drafts:    make(map[string]*draft),
	}
}

// EstimateStatus reports estimator slot usage.
func (s *Service) EstimateStatus() EstimateLimiterStatus {
	return s.limiter.Status()
}

// WaitForEstimates blocks until no estimate is in flight or ctx is done.
func (s *Service) WaitForEstimates(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Catalog returns the dataset catalog the Service resolves drafts against.
func (s *Service) Catalog() *export.Catalog {
	return s.catalog
}

// Health checks the backing store.
func (s *Service) Health(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return newError(KindUnavailable, "Database unavailable", err)
	}
	return nil
}

// Authenticate resolves a session token to its user id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", newError(KindUnauthorized, msgUnauthorized, nil)
	}
	sess, err := s.store.LookupSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return "", newError(KindUnauthorized, msgUnauthorized, nil)
	}
	if err != nil {
		return "", newError(KindInternal, "Failed to verify session", err)
	}
	return sess.UserID, nil
}

// PurgeExpiredSessions deletes every session that has already expired and
// returns how many were removed.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	purged, err := s.store.PurgeExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return purged, nil
}

// CreateSession issues a session token for userID. A ttl of zero uses the
// configured session lifetime.
func (s *Service) CreateSession(ctx context.Context, userID string, ttl time.Duration) (store.Session, error) {
	if ttl <= 0 {
		ttl = s.opts.SessionTTL
	}
	sess, err := s.store.CreateSession(ctx, userID, ttl)
	if err != nil {
		return store.Session{}, fmt.Errorf("create session: %w", err)
	}

	s.logAuditBestEffort(ctx, AuditLogParams{
		Action:     ActionSessionCreate,
		UserID:     userID,
		EntityType: "session",
		Reason:     "expires " + sess.ExpiresAt.Format(time.RFC3339),
	})
	return sess, nil
}

// summarize estimates cfg and builds its display model.
func (s *Service) summarize(ctx context.Context, cfg export.Config) (export.Summary, error) {
	var ds *export.Dataset
	if d, ok := s.catalog.Lookup(cfg.Dataset); ok {
		ds = d
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrTooManyEstimates) {
			return export.Summary{}, newError(KindUnavailable, "Estimator is busy", err)
		}
		return export.Summary{}, newError(KindUnavailable, "Estimate unavailable", err)
	}
	est, err := s.estimator.Estimate(ctx, cfg)
	s.limiter.Release()
	if err != nil {
		return export.Summary{}, newError(KindUnavailable, "Estimate unavailable", err)
	}
	return export.Summarize(ds, cfg, est, s.now(), s.opts.SummaryValidity), nil
}
