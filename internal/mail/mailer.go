// Package mail sends transactional email over SMTP. Only the
// password-reset code currently goes out this way; delivery is
// best-effort from the caller's point of view so the forgot-password
// endpoint stays non-enumerating even when SMTP is down.
package mail

import (
	"fmt"
	"time"

	gomail "gopkg.in/gomail.v2"
)

// Mailer wraps an SMTP dialer with the sender identity.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New constructs a Mailer. Host may be empty, in which case Send
// methods return an error and callers fall back to logging; this
// keeps local development working without an SMTP server.
func New(host string, port int, username, password, from string) *Mailer {
	if host == "" {
		return &Mailer{from: from}
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendPasswordReset emails a one-time code to the given address,
// including how long it stays valid.
func (m *Mailer) SendPasswordReset(to, code string, ttl time.Duration) error {
	if m.dialer == nil {
		return fmt.Errorf("mail: no SMTP host configured")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password reset code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your password reset code is: %s\n\nIt expires in %d minutes. If you did not request this, ignore this email.\n",
		code, int(ttl.Minutes())))
	return m.dialer.DialAndSend(msg)
}
