package model

import "time"

// UserSession models an entry in the `user_sessions` table. One row
// exists per issued bearer token; the plain JWT is not stored, only
// its SHA-256 hash. Logout flips IsActive, after which the token no
// longer authenticates even while the JWT itself is unexpired.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  TokenHash – SHA-256 hex digest of the bearer token.
//  IsActive  – false once the session has been invalidated.
//  CreatedAt – timestamp of creation.
type UserSession struct {
	ID        uint64    // user_sessions.id
	UserID    uint64    // user_sessions.user_id
	TokenHash string    // user_sessions.token_hash
	IsActive  bool      // user_sessions.is_active
	CreatedAt time.Time // user_sessions.created_at
}

// LoginToken models a one-time code in the `login_tokens` table,
// used for the password-reset flow. A code is valid while
// ConsumedAt is null and ExpiresAt is in the future; consumption is
// a single conditional update so concurrent redemption attempts
// cannot both succeed.
type LoginToken struct {
	ID         uint64     // login_tokens.id
	UserID     uint64     // login_tokens.user_id
	Token      string     // login_tokens.token (6-char code)
	ExpiresAt  time.Time  // login_tokens.expires_at
	ConsumedAt *time.Time // login_tokens.consumed_at (nullable)
	CreatedAt  time.Time  // login_tokens.created_at
}
