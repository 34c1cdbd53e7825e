// Package queue defines message payloads exchanged over the message broker.
package queue

// Audit event types published to the auth.audit queue.
const (
	EventLogin           = "login"
	EventLogout          = "logout"
	EventSignup          = "signup"
	EventPasswordChanged = "password_changed"
	EventGrantUpdated    = "grant_updated"
)

// AuthAuditEvent is published whenever an authentication or
// authorization state change happens. It carries enough information
// for downstream consumers to log or alert without querying the
// primary database.
type AuthAuditEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id,omitempty"`
	Email      string `json:"email,omitempty"`
	RemoteIP   string `json:"remote_ip,omitempty"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
