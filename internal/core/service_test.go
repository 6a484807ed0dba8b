package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/backoffice/internal/export"
	"github.com/JonMunkholm/backoffice/internal/store"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

const testCatalogYAML = `
datasets:
  - id: orders
    name: Orders
    enabled: true
    popularity: 90
    rows_per_day: 1000
    fields:
      - {key: order_id, label: Order ID, type: string, default: true}
      - {key: placed_at, label: Placed At, type: datetime, category: dates, default: true}
      - {key: channel, label: Channel, type: enum, category: status, values: [dine_in, takeout, delivery, catering], default: true}
      - {key: total, label: Total, type: currency, category: financial, default: true}
      - {key: customer_email, label: Customer Email, type: string, category: pii, pii: true}
  - id: staff_shifts
    name: Staff Shifts
    enabled: false
    rows_per_day: 10
    fields:
      - {key: shift_id, label: Shift ID, type: string, default: true}
`

// fakeStore is an in-memory store.Store with injectable failures.
type fakeStore struct {
	mu sync.Mutex

	sessions    map[string]store.Session // token -> session
	allergens   map[string]store.Allergen
	memberships map[string]bool // user|merchant -> active
	audit       []store.AuditRecord
	purged      int

	pingErr   error
	getErr    error
	deleteErr error
	auditErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: map[string]store.Session{
			"tok-owner": {UserID: "u-owner", ExpiresAt: testNow.Add(time.Hour)},
		},
		allergens: map[string]store.Allergen{
			"abc123": {ID: "abc123", Name: "Peanuts", LocationID: "l-downtown", MerchantID: "m-bistro"},
		},
		memberships: map[string]bool{
			"u-owner|m-bistro":  true,
			"u-former|m-bistro": false,
		},
	}
}

var _ store.Store = (*fakeStore)(nil)

func (f *fakeStore) Backend() store.Backend { return "fake" }
func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Ping(context.Context) error { return f.pingErr }
func (f *fakeStore) Close() error { return nil }
func (f *fakeStore) LoadFixtures(context.Context, store.Fixtures) error { return nil }

func (f *fakeStore) CreateSession(_ context.Context, userID string, ttl time.Duration) (store.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := "tok-" + userID
	sess := store.Session{Token: token, UserID: userID, ExpiresAt: testNow.Add(ttl)}
	f.sessions[token] = store.Session{UserID: userID, ExpiresAt: sess.ExpiresAt}
	return sess, nil
}

func (f *fakeStore) LookupSession(_ context.Context, token string) (store.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[token]
	if !ok || sess.Expired(testNow) {
		return store.Session{}, store.ErrNotFound
	}
	return sess, nil
}

func (f *fakeStore) PurgeExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged++
	var n int64
	for tok, sess := range f.sessions {
		if sess.Expired(now) {
			delete(f.sessions, tok)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) GetAllergen(_ context.Context, id string) (store.Allergen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return store.Allergen{}, f.getErr
	}
	a, ok := f.allergens[id]
	if !ok {
		return store.Allergen{}, store.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) HasActiveMembership(_ context.Context, userID, merchantID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memberships[userID+"|"+merchantID], nil
}

func (f *fakeStore) DeleteAllergen(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.allergens[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.allergens, id)
	return nil
}

func (f *fakeStore) RecordAudit(_ context.Context, rec store.AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.auditErr != nil {
		return f.auditErr
	}
	f.audit = append(f.audit, rec)
	return nil
}

func (f *fakeStore) ListAudit(_ context.Context, filter store.AuditFilter) ([]store.AuditRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.AuditRecord
	for i := len(f.audit) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		if filter.UserID != "" && f.audit[i].UserID != filter.UserID {
			continue
		}
		out = append(out, f.audit[i])
	}
	return out, nil
}

func (f *fakeStore) auditActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var actions []string
	for _, r := range f.audit {
		actions = append(actions, r.Action)
	}
	return actions
}

// testClock is a settable clock for draft expiry.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestService(t *testing.T, opts Options) (*Service, *fakeStore, *testClock) {
	t.Helper()
	cat, err := export.LoadCatalog(strings.NewReader(testCatalogYAML))
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	fs := newFakeStore()
	clock := &testClock{t: testNow}
	svc := NewService(fs, cat, opts)
	svc.now = clock.Now
	return svc, fs, clock
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want kind %q", want)
	}
	if got := KindOf(err); got != want {
		t.Errorf("KindOf(%v) = %q, want %q", err, got, want)
	}
}

func TestNewService_Defaults(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	if svc.opts.DraftTTL != DefaultDraftTTL {
		t.Errorf("DraftTTL = %v, want %v", svc.opts.DraftTTL, DefaultDraftTTL)
	}
	if svc.opts.MaxDrafts != DefaultMaxDrafts {
		t.Errorf("MaxDrafts = %d, want %d", svc.opts.MaxDrafts, DefaultMaxDrafts)
	}
	if svc.opts.SummaryValidity != export.DefaultSummaryValidity {
		t.Errorf("SummaryValidity = %v, want %v", svc.opts.SummaryValidity, export.DefaultSummaryValidity)
	}
	if _, ok := svc.estimator.(*export.Projector); !ok {
		t.Errorf("estimator = %T, want *export.Projector", svc.estimator)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	ctx := context.Background()

	userID, err := svc.Authenticate(ctx, "tok-owner")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if userID != "u-owner" {
		t.Errorf("Authenticate() = %q, want %q", userID, "u-owner")
	}

	for _, token := range []string{"", "tok-unknown"} {
		_, err := svc.Authenticate(ctx, token)
		assertKind(t, err, KindUnauthorized)
		var e *Error
		if errors.As(err, &e) && e.Message != "Unauthorized - Please log in" {
			t.Errorf("Message = %q", e.Message)
		}
	}
}

func TestCreateSession_Audited(t *testing.T) {
	svc, fs, _ := newTestService(t, Options{SessionTTL: 3 * time.Hour})
	ctx := ContextWithIPAddress(context.Background(), "203.0.113.9")

	sess, err := svc.CreateSession(ctx, "u-owner", 0)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if want := testNow.Add(3 * time.Hour); !sess.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", sess.ExpiresAt, want)
	}

	if len(fs.audit) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(fs.audit))
	}
	rec := fs.audit[0]
	if rec.Action != string(ActionSessionCreate) || rec.Severity != string(SeverityMedium) {
		t.Errorf("audit = %s/%s, want session_create/medium", rec.Action, rec.Severity)
	}
	if rec.IPAddress != "203.0.113.9" {
		t.Errorf("audit IPAddress = %q, want context value", rec.IPAddress)
	}
}

func TestHealth(t *testing.T) {
	svc, fs, _ := newTestService(t, Options{})
	if err := svc.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
	fs.pingErr = errors.New("dial tcp: connection refused")
	assertKind(t, svc.Health(context.Background()), KindUnavailable)
}

func TestGetAuditLog(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	ctx := context.Background()

	for _, a := range []AuditAction{ActionSessionCreate, ActionExportSchedule, ActionAllergenDelete} {
		if _, err := svc.LogAudit(ctx, AuditLogParams{Action: a, UserID: "u-owner"}); err != nil {
			t.Fatalf("LogAudit(%s) error = %v", a, err)
		}
	}

	entries, err := svc.GetAuditLog(ctx, 2)
	if err != nil {
		t.Fatalf("GetAuditLog() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Action != ActionAllergenDelete || entries[0].Severity != SeverityHigh {
		t.Errorf("entries[0] = %s/%s, want allergen_delete/high", entries[0].Action, entries[0].Severity)
	}
}

func TestGetUserAuditLog(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	ctx := context.Background()

	if _, err := svc.LogAudit(ctx, AuditLogParams{Action: ActionAllergenDelete, UserID: "u-alice"}); err != nil {
		t.Fatalf("LogAudit() error = %v", err)
	}
	for i := 0; i < 1000; i++ {
		if _, err := svc.LogAudit(ctx, AuditLogParams{Action: ActionSessionCreate, UserID: "u-bob"}); err != nil {
			t.Fatalf("LogAudit() error = %v", err)
		}
	}

	entries, err := svc.GetUserAuditLog(ctx, "u-alice", 100)
	if err != nil {
		t.Fatalf("GetUserAuditLog() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("alice entries = %d, want 1", len(entries))
	}
	if entries[0].UserID != "u-alice" || entries[0].Action != ActionAllergenDelete {
		t.Errorf("entries[0] = %s/%s, want u-alice/allergen_delete", entries[0].UserID, entries[0].Action)
	}

	entries, err = svc.GetUserAuditLog(ctx, "u-bob", 5)
	if err != nil {
		t.Fatalf("GetUserAuditLog() error = %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("bob entries = %d, want 5", len(entries))
	}

	_, err = svc.GetUserAuditLog(ctx, "", 10)
	assertKind(t, err, KindUnauthorized)
}

func TestDetermineSeverity(t *testing.T) {
	tests := []struct {
		action AuditAction
		want   AuditSeverity
	}{
		{ActionAllergenDelete, SeverityHigh},
		{ActionExportSchedule, SeverityMedium},
		{ActionSessionCreate, SeverityMedium},
		{AuditAction("something_else"), SeverityLow},
	}
	for _, tt := range tests {
		if got := determineSeverity(tt.action); got != tt.want {
			t.Errorf("determineSeverity(%s) = %s, want %s", tt.action, got, tt.want)
		}
	}
}
