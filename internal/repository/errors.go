// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// leaking raw store errors. For example, ErrTokenExpired and
// ErrTokenInvalid are distinguished internally so the expired row can
// be deleted, but handlers collapse both into one generic message so
// the response does not disclose token state to the caller.
package repository

import "errors"

// ErrNotFound is returned when a referenced user, role, permission or
// menu row does not exist. Handlers translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when signup hits the unique email index.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenInvalid is returned when a one-time code does not match any
// stored row.
var ErrTokenInvalid = errors.New("token invalid")

// ErrTokenExpired is returned when a one-time code exists but its
// expiry has passed. The row is deleted on detection so the code can
// never be replayed, even as an expired one.
var ErrTokenExpired = errors.New("token expired")

// ErrNoActiveSession is returned by Invalidate when no active session
// row matches the (user, token) pair. Logout of an already
// invalidated session is an error, not a silent no-op.
var ErrNoActiveSession = errors.New("no active session")
