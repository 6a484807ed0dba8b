// Package sqlite implements store.Store on modernc.org/sqlite for local
// development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/backoffice/internal/store"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed store.Store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens the database at path (a file path or file: URI) with foreign
// keys enforced.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func dsn(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}

func (s *Store) Backend() store.Backend { return store.BackendSQLite }

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (store.Session, error) {
	token, hash, err := store.NewSessionToken()
	if err != nil {
		return store.Session{}, fmt.Errorf("generate token: %w", err)
	}
	expires := s.now().Add(ttl).UTC().Truncate(time.Second)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at) VALUES (?, ?, ?)`,
		hash, userID, expires.Unix())
	if err != nil {
		return store.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return store.Session{Token: token, UserID: userID, ExpiresAt: expires}, nil
}

func (s *Store) LookupSession(ctx context.Context, token string) (store.Session, error) {
	var (
		sess    store.Session
		expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token_hash = ? AND expires_at > ?`,
		store.HashToken(token), s.now().Unix()).Scan(&sess.UserID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Session{}, store.ErrNotFound
	}
	if err != nil {
		return store.Session{}, fmt.Errorf("lookup session: %w", err)
	}
	sess.ExpiresAt = time.Unix(expires, 0).UTC()
	return sess, nil
}

func (s *Store) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) GetAllergen(ctx context.Context, id string) (store.Allergen, error) {
	var a store.Allergen
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.name, a.location_id, l.merchant_id
		FROM allergens a
		JOIN locations l ON l.id = a.location_id
		WHERE a.id = ?`, id).Scan(&a.ID, &a.Name, &a.LocationID, &a.MerchantID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Allergen{}, store.ErrNotFound
	}
	if err != nil {
		return store.Allergen{}, fmt.Errorf("get allergen: %w", err)
	}
	return a, nil
}

func (s *Store) HasActiveMembership(ctx context.Context, userID, merchantID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM merchant_memberships
		WHERE user_id = ? AND merchant_id = ? AND status = 'active'`,
		userID, merchantID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return n > 0, nil
}

func (s *Store) DeleteAllergen(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM allergens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete allergen: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete allergen: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) RecordAudit(ctx context.Context, rec store.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, action, severity, user_id, entity_type, entity_id, ip_address, user_agent, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Action, rec.Severity, rec.UserID, rec.EntityType, rec.EntityID,
		rec.IPAddress, rec.UserAgent, rec.Reason, rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, filter store.AuditFilter) ([]store.AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, severity, user_id, entity_type, entity_id, ip_address, user_agent, reason, created_at
		FROM audit_log
		WHERE (?1 = '' OR user_id = ?1)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?2`, filter.UserID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var out []store.AuditRecord
	for rows.Next() {
		var (
			r       store.AuditRecord
			created int64
		)
		if err := rows.Scan(&r.ID, &r.Action, &r.Severity, &r.UserID, &r.EntityType, &r.EntityID,
			&r.IPAddress, &r.UserAgent, &r.Reason, &created); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) LoadFixtures(ctx context.Context, f store.Fixtures) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exec := func(ctx context.Context, query string, args ...any) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
	if err := store.ApplyFixtures(ctx, f, store.PlaceholderQuestion, exec); err != nil {
		return err
	}
	return tx.Commit()
}
