// Package store defines persistence for sessions, merchant membership,
// allergens and the audit log. Backends live in store/postgres and
// store/sqlite; database.Open picks one from the connection URL.
package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Backend names a storage implementation.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// Store is the persistence boundary used by the service layer.
type Store interface {
	Backend() Backend
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	// CreateSession issues a bearer token for userID. Only its hash is stored.
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (Session, error)
	// LookupSession resolves a bearer token. Unknown and expired tokens
	// return ErrNotFound.
	LookupSession(ctx context.Context, token string) (Session, error)
	// PurgeExpiredSessions deletes sessions that expired before now.
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// GetAllergen returns the allergen with the merchant owning its location.
	GetAllergen(ctx context.Context, id string) (Allergen, error)
	// HasActiveMembership reports whether userID is an active member of
	// merchantID.
	HasActiveMembership(ctx context.Context, userID, merchantID string) (bool, error)
	// DeleteAllergen removes the allergen; menu item links cascade.
	DeleteAllergen(ctx context.Context, id string) error

	RecordAudit(ctx context.Context, rec AuditRecord) error
	// ListAudit returns the newest records matching filter, newest first.
	ListAudit(ctx context.Context, filter AuditFilter) ([]AuditRecord, error)

	LoadFixtures(ctx context.Context, f Fixtures) error
}

// AuditFilter narrows ListAudit. An empty UserID matches every user.
type AuditFilter struct {
	UserID string
	Limit  int
}

// Session is an authenticated user session.
type Session struct {
	Token     string // set only when the session is created
	UserID    string
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Allergen is an allergen record joined with its owning merchant.
type Allergen struct {
	ID         string
	Name       string
	LocationID string
	MerchantID string
}

// AuditRecord is one row of the audit log.
type AuditRecord struct {
	ID         string
	Action     string
	Severity   string
	UserID     string
	EntityType string
	EntityID   string
	IPAddress  string
	UserAgent  string
	Reason     string
	CreatedAt  time.Time
}

// NewSessionToken returns a random bearer token and its storage hash.
func NewSessionToken() (token, hash string, err error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", "", err
	}
	token = base64.RawURLEncoding.EncodeToString(b[:])
	return token, HashToken(token), nil
}

// HashToken returns the hex SHA-256 of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
