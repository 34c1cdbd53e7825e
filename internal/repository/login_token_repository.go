package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/adisurya/hr-admin-api/internal/model"
	"github.com/adisurya/hr-admin-api/internal/utils"
)

// LoginTokenRepo manages the one-time codes used by the
// password-reset flow. Codes are short (6 characters) because they
// travel by email and are typed back by a human; safety comes from
// the short TTL and single-use consumption, not from entropy.
type LoginTokenRepo struct{ DB *sql.DB }

func NewLoginTokenRepo(db *sql.DB) *LoginTokenRepo { return &LoginTokenRepo{DB: db} }

// codeLength is the number of characters in a one-time code.
const codeLength = 6

// Issue generates a fresh code for the user with an absolute expiry
// of now+ttl and persists it. Any earlier unconsumed codes for the
// same user are removed first so at most one live code exists per
// user.
func (r *LoginTokenRepo) Issue(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
	code, err := utils.NewOneTimeCode(codeLength)
	if err != nil {
		return "", err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM login_tokens WHERE user_id=? AND consumed_at IS NULL",
		userID); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO login_tokens (user_id, token, expires_at) VALUES (?,?,?)",
		userID, code, time.Now().UTC().Add(ttl)); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return code, nil
}

// Redeem consumes a one-time code and replaces the owner's password
// hash in one transaction: either the code is burned and the new
// password is in place, or neither happened. The redemption itself
// is a single conditional UPDATE (consumed_at still null, expiry in
// the future) so two concurrent attempts cannot both succeed; the
// loser falls through to the diagnosis below.
//
// Outcomes:
//   - code unknown (or already consumed): ErrTokenInvalid
//   - code past expiry: the row is deleted and ErrTokenExpired
//   - otherwise: code consumed, hash updated, user ID returned
func (r *LoginTokenRepo) Redeem(ctx context.Context, code, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE login_tokens SET consumed_at=? WHERE token=? AND consumed_at IS NULL AND expires_at > ?",
		now, code, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if n == 1 {
		// DATETIME columns may round the stored consumed_at to whole
		// seconds, so the follow-up read matches on consumption, not
		// on the exact timestamp.
		var userID uint64
		if err := tx.QueryRowContext(ctx,
			"SELECT user_id FROM login_tokens WHERE token=? AND consumed_at IS NOT NULL LIMIT 1",
			code).Scan(&userID); err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET password_hash=? WHERE id=?", hash, userID); err != nil {
			return 0, err
		}
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		return userID, nil
	}

	// The conditional update matched nothing. Distinguish expired
	// from unknown/consumed so expired rows can be purged; handlers
	// still present both as one generic failure.
	var lt model.LoginToken
	err = tx.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, consumed_at FROM login_tokens WHERE token=? LIMIT 1",
		code).Scan(&lt.ID, &lt.UserID, &lt.ExpiresAt, &lt.ConsumedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTokenInvalid
	}
	if err != nil {
		return 0, err
	}
	if lt.ConsumedAt != nil {
		return 0, ErrTokenInvalid
	}
	// Unconsumed but the update refused it: expiry has passed.
	// Delete so the code cannot resurface.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM login_tokens WHERE id=?", lt.ID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return 0, ErrTokenExpired
}
