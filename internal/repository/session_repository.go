package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adisurya/hr-admin-api/internal/model"
)

// SessionRepo persists bearer sessions. One row exists per issued
// token (hashed); the auth middleware consults IsActive on every
// protected request so a logged-out token stops working before its
// JWT expiry.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Store records a session for the given user and token hash. When a
// row for the exact (user, token) pair already exists, it is
// reactivated rather than duplicated.
func (r *SessionRepo) Store(ctx context.Context, userID uint64, tokenHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE user_sessions SET is_active=1 WHERE user_id=? AND token_hash=?",
		userID, tokenHash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	// No existing row was reactivated; either none exists or it is
	// already active. INSERT IGNORE covers both without a read.
	_, err = r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_sessions (user_id, token_hash, is_active) VALUES (?,?,1)",
		userID, tokenHash)
	return err
}

// IsActive reports whether the session for the (user, token) pair is
// still active. A missing row and an invalidated row both read as
// inactive.
func (r *SessionRepo) IsActive(ctx context.Context, userID uint64, tokenHash string) (bool, error) {
	var s model.UserSession
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, is_active, created_at FROM user_sessions WHERE user_id=? AND token_hash=? LIMIT 1",
		userID, tokenHash).
		Scan(&s.ID, &s.UserID, &s.TokenHash, &s.IsActive, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.IsActive, nil
}

// Invalidate marks a session inactive. ErrNoActiveSession is
// returned when no active row matched, so logout of a dead session
// surfaces as a failure instead of a silent no-op.
func (r *SessionRepo) Invalidate(ctx context.Context, userID uint64, tokenHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE user_sessions SET is_active=0 WHERE user_id=? AND token_hash=? AND is_active=1",
		userID, tokenHash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNoActiveSession
	}
	return nil
}

// InvalidateAllForUser deactivates every active session a user
// holds. Used after a password change so stolen tokens die with the
// old password.
func (r *SessionRepo) InvalidateAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_sessions SET is_active=0 WHERE user_id=? AND is_active=1",
		userID)
	return err
}
