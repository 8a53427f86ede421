package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pos-sync-server/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// FindActive returns the single non-revoked session for (user, device),
	// or ErrNotFound.
	FindActive(ctx context.Context, userID, deviceID string) (*domain.Session, error)
	// Revoke stamps revoked_at and bumps the session version.
	Revoke(ctx context.Context, id string) error
}

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, device_id, refresh_token_hash, expires_at, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.UserID, s.DeviceID, s.RefreshTokenHash, s.ExpiresAt.UTC(), s.Version, s.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindActive(ctx context.Context, userID, deviceID string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, device_id, refresh_token_hash, expires_at, revoked_at, version, created_at
		FROM sessions
		WHERE user_id = ? AND device_id = ? AND revoked_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, deviceID)

	var s domain.Session
	var revoked sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.DeviceID, &s.RefreshTokenHash, &s.ExpiresAt, &revoked, &s.Version, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if revoked.Valid {
		s.RevokedAt = &revoked.Time
	}
	return &s, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = ?, version = version + 1
		WHERE id = ? AND revoked_at IS NULL
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
