// Package postgres implements store.Store on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/backoffice/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions tunes the connection pool. Zero values keep pgx defaults.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store is a PostgreSQL-backed store.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open connects to url and verifies the connection.
func Open(ctx context.Context, url string, opts PoolOptions) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Backend() store.Backend { return store.BackendPostgres }

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (store.Session, error) {
	token, hash, err := store.NewSessionToken()
	if err != nil {
		return store.Session{}, fmt.Errorf("generate token: %w", err)
	}
	expires := time.Now().Add(ttl).UTC()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`,
		hash, userID, expires)
	if err != nil {
		return store.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return store.Session{Token: token, UserID: userID, ExpiresAt: expires}, nil
}

func (s *Store) LookupSession(ctx context.Context, token string) (store.Session, error) {
	var sess store.Session
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token_hash = $1 AND expires_at > now()`,
		store.HashToken(token)).Scan(&sess.UserID, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Session{}, store.ErrNotFound
	}
	if err != nil {
		return store.Session{}, fmt.Errorf("lookup session: %w", err)
	}
	return sess, nil
}

func (s *Store) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) GetAllergen(ctx context.Context, id string) (store.Allergen, error) {
	var a store.Allergen
	err := s.pool.QueryRow(ctx, `
		SELECT a.id, a.name, a.location_id, l.merchant_id
		FROM allergens a
		JOIN locations l ON l.id = a.location_id
		WHERE a.id = $1`, id).Scan(&a.ID, &a.Name, &a.LocationID, &a.MerchantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Allergen{}, store.ErrNotFound
	}
	if err != nil {
		return store.Allergen{}, fmt.Errorf("get allergen: %w", err)
	}
	return a, nil
}

func (s *Store) HasActiveMembership(ctx context.Context, userID, merchantID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM merchant_memberships
			WHERE user_id = $1 AND merchant_id = $2 AND status = 'active'
		)`, userID, merchantID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

func (s *Store) DeleteAllergen(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM allergens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete allergen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) RecordAudit(ctx context.Context, rec store.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_log (id, action, severity, user_id, entity_type, entity_id, ip_address, user_agent, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.Action, rec.Severity, rec.UserID, rec.EntityType, rec.EntityID,
		rec.IPAddress, rec.UserAgent, rec.Reason, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, filter store.AuditFilter) ([]store.AuditRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, action, severity, user_id, entity_type, entity_id, ip_address, user_agent, reason, created_at
		FROM audit_log
		WHERE ($1::text = '' OR user_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`, filter.UserID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var out []store.AuditRecord
	for rows.Next() {
		var r store.AuditRecord
		if err := rows.Scan(&r.ID, &r.Action, &r.Severity, &r.UserID, &r.EntityType, &r.EntityID,
			&r.IPAddress, &r.UserAgent, &r.Reason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) LoadFixtures(ctx context.Context, f store.Fixtures) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	exec := func(ctx context.Context, query string, args ...any) error {
		_, err := tx.Exec(ctx, query, args...)
		return err
	}
	if err := store.ApplyFixtures(ctx, f, store.PlaceholderDollar, exec); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
