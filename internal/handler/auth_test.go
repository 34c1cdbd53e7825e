package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adisurya/hr-admin-api/internal/config"
	"github.com/adisurya/hr-admin-api/internal/model"
	"github.com/adisurya/hr-admin-api/internal/queue"
	"github.com/adisurya/hr-admin-api/internal/repository"
	"github.com/adisurya/hr-admin-api/internal/utils"
)

// ----- fakes -----

type fakeUsers struct {
	byEmail map[string]model.User
	byID    map[uint64]model.User
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{
		byEmail: map[string]model.User{},
		byID:    map[uint64]model.User{},
	}
	for _, u := range users {
		f.byEmail[u.Email] = u
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, email, password, name string, _ *string, _ uint64, _ int) (uint64, error) {
	if _, ok := f.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	id := uint64(len(f.byID) + 1)
	hash, _ := utils.HashPassword(password, 4)
	u := model.User{ID: id, Email: email, Name: name, PasswordHash: hash, IsActive: true}
	f.byEmail[email] = u
	f.byID[id] = u
	return id, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok || !u.IsActive {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) PrimaryRole(_ context.Context, _ uint64) (model.Role, error) {
	return model.Role{}, repository.ErrNotFound
}

type fakeSessions struct {
	active map[string]uint64 // tokenHash -> userID
}

func newFakeSessions() *fakeSessions { return &fakeSessions{active: map[string]uint64{}} }

func (f *fakeSessions) Store(_ context.Context, userID uint64, tokenHash string) error {
	f.active[tokenHash] = userID
	return nil
}
func (f *fakeSessions) Invalidate(_ context.Context, userID uint64, tokenHash string) error {
	if uid, ok := f.active[tokenHash]; !ok || uid != userID {
		return repository.ErrNoActiveSession
	}
	delete(f.active, tokenHash)
	return nil
}
func (f *fakeSessions) InvalidateAllForUser(_ context.Context, userID uint64) error {
	for h, uid := range f.active {
		if uid == userID {
			delete(f.active, h)
		}
	}
	return nil
}

type fakeResets struct {
	codes map[string]struct {
		userID  uint64
		expires time.Time
	}
	issued   []string
	redeemed map[uint64]string // userID -> new plain password
}

func newFakeResets() *fakeResets {
	return &fakeResets{
		codes: map[string]struct {
			userID  uint64
			expires time.Time
		}{},
		redeemed: map[uint64]string{},
	}
}

func (f *fakeResets) Issue(_ context.Context, userID uint64, ttl time.Duration) (string, error) {
	code, err := utils.NewOneTimeCode(6)
	if err != nil {
		return "", err
	}
	f.codes[code] = struct {
		userID  uint64
		expires time.Time
	}{userID, time.Now().Add(ttl)}
	f.issued = append(f.issued, code)
	return code, nil
}

func (f *fakeResets) Redeem(_ context.Context, code, password string, _ int) (uint64, error) {
	rec, ok := f.codes[code]
	if !ok {
		return 0, repository.ErrTokenInvalid
	}
	delete(f.codes, code)
	if time.Now().After(rec.expires) {
		return 0, repository.ErrTokenExpired
	}
	f.redeemed[rec.userID] = password
	return rec.userID, nil
}

type fakeMailer struct{ sent []string }

func (f *fakeMailer) SendPasswordReset(to, code string, _ time.Duration) error {
	f.sent = append(f.sent, to+":"+code)
	return nil
}

type fakeAudit struct{ events []queue.AuthAuditEvent }

func (f *fakeAudit) Publish(_ context.Context, ev queue.AuthAuditEvent) error {
	f.events = append(f.events, ev)
	return nil
}

// ----- helpers -----

func testConfig() config.Config {
	return config.Config{
		JWTSecret:    "handler-test-secret",
		AccessTTLMin: 30,
		ResetTTLMin:  10,
		BcryptCost:   4,
	}
}

func newTestAuthHandler(users *fakeUsers) (*AuthHandler, *fakeSessions, *fakeResets, *fakeMailer, *fakeAudit) {
	sessions := newFakeSessions()
	resets := newFakeResets()
	mailer := &fakeMailer{}
	auditor := &fakeAudit{}
	h := NewAuthHandler(testConfig(), users, sessions, resets, mailer, auditor)
	return h, sessions, resets, mailer, auditor
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, path, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func seedUser(t *testing.T, email, password string, active bool) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return model.User{ID: 1, Email: email, Name: "Test User", PasswordHash: hash, IsActive: active}
}

// ----- tests -----

func TestLoginSuccess(t *testing.T) {
	users := newFakeUsers(seedUser(t, "alice@example.com", "correct-horse", true))
	h, sessions, _, _, auditor := newTestAuthHandler(users)

	rec := doJSON(t, h.Login, http.MethodPost, "/v1/auth/login",
		`{"email":"alice@example.com","password":"correct-horse"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if len(sessions.active) != 1 {
		t.Fatalf("expected one session row, got %d", len(sessions.active))
	}
	if len(auditor.events) != 1 || auditor.events[0].Type != queue.EventLogin {
		t.Fatalf("expected login audit event, got %#v", auditor.events)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	// Unknown email, wrong password and inactive account must yield
	// byte-identical responses so the endpoint cannot be used as a
	// user-existence oracle.
	users := newFakeUsers(
		seedUser(t, "alice@example.com", "correct-horse", true),
		model.User{ID: 2, Email: "bob@example.com", Name: "Bob", PasswordHash: mustHash(t, "whatever"), IsActive: false},
	)
	h, _, _, _, _ := newTestAuthHandler(users)

	bodies := []string{
		`{"email":"nobody@example.com","password":"anything"}`,
		`{"email":"alice@example.com","password":"wrong"}`,
		`{"email":"bob@example.com","password":"whatever"}`,
	}
	var first *httptest.ResponseRecorder
	for _, body := range bodies {
		rec := doJSON(t, h.Login, http.MethodPost, "/v1/auth/login", body, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", body, rec.Code)
		}
		if first == nil {
			first = rec
			continue
		}
		if rec.Body.String() != first.Body.String() {
			t.Fatalf("failure bodies differ: %q vs %q", rec.Body.String(), first.Body.String())
		}
	}
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

func TestLogoutInvalidatesSession(t *testing.T) {
	users := newFakeUsers(seedUser(t, "alice@example.com", "pw", true))
	h, sessions, _, _, _ := newTestAuthHandler(users)

	tok, err := utils.NewAccessToken(testConfig().JWTSecret, 1, "", 30)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	hash := utils.HashSessionToken(tok.Token)
	_ = sessions.Store(context.Background(), 1, hash)

	setup := func(c echo.Context) {
		c.Set("user_id", uint64(1))
		c.Set("token", tok.Token)
	}
	rec := doJSON(t, h.Logout, http.MethodPost, "/v1/logout", "", setup)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(sessions.active) != 0 {
		t.Fatal("session must be gone after logout")
	}

	// Second logout of the same token: no active session left.
	rec = doJSON(t, h.Logout, http.MethodPost, "/v1/logout", "", setup)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on replayed logout, got %d", rec.Code)
	}
}

func TestForgotPasswordIsNonEnumerating(t *testing.T) {
	users := newFakeUsers(seedUser(t, "alice@example.com", "pw", true))
	h, _, resets, mailer, _ := newTestAuthHandler(users)

	known := doJSON(t, h.ForgotPassword, http.MethodPost, "/v1/auth/forgot-password",
		`{"email":"alice@example.com"}`, nil)
	unknown := doJSON(t, h.ForgotPassword, http.MethodPost, "/v1/auth/forgot-password",
		`{"email":"nobody@example.com"}`, nil)

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("both must be 200, got %d / %d", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Fatalf("response bodies must match: %q vs %q", known.Body.String(), unknown.Body.String())
	}
	// Only the known address actually produced a code and an email.
	if len(resets.issued) != 1 {
		t.Fatalf("expected one code issued, got %d", len(resets.issued))
	}
	if len(mailer.sent) != 1 || !strings.HasPrefix(mailer.sent[0], "alice@example.com:") {
		t.Fatalf("expected mail to alice, got %v", mailer.sent)
	}
}

func TestChangePasswordHappyPath(t *testing.T) {
	users := newFakeUsers(seedUser(t, "alice@example.com", "old-pw", true))
	h, sessions, resets, _, auditor := newTestAuthHandler(users)

	// A live session that must die with the password change.
	_ = sessions.Store(context.Background(), 1, "stale-session-hash")

	code, err := resets.Issue(context.Background(), 1, 10*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := doJSON(t, h.ChangePassword, http.MethodPost, "/v1/auth/change-password",
		`{"token":"`+code+`","password":"new-pw"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resets.redeemed[1] != "new-pw" {
		t.Fatal("password was not updated through the redeem path")
	}
	if len(sessions.active) != 0 {
		t.Fatal("existing sessions must be invalidated")
	}
	if len(auditor.events) != 1 || auditor.events[0].Type != queue.EventPasswordChanged {
		t.Fatalf("expected password_changed audit event, got %#v", auditor.events)
	}

	// Replaying the consumed code must fail.
	rec = doJSON(t, h.ChangePassword, http.MethodPost, "/v1/auth/change-password",
		`{"token":"`+code+`","password":"another"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on replay, got %d", rec.Code)
	}
}

func TestChangePasswordExpiredAndInvalidShareOneMessage(t *testing.T) {
	users := newFakeUsers(seedUser(t, "alice@example.com", "pw", true))
	h, _, resets, _, _ := newTestAuthHandler(users)

	expired, err := resets.Issue(context.Background(), 1, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	recExpired := doJSON(t, h.ChangePassword, http.MethodPost, "/v1/auth/change-password",
		`{"token":"`+expired+`","password":"x"}`, nil)
	recInvalid := doJSON(t, h.ChangePassword, http.MethodPost, "/v1/auth/change-password",
		`{"token":"NOSUCH","password":"x"}`, nil)

	if recExpired.Code != http.StatusUnauthorized || recInvalid.Code != http.StatusUnauthorized {
		t.Fatalf("both must be 401, got %d / %d", recExpired.Code, recInvalid.Code)
	}
	if recExpired.Body.String() != recInvalid.Body.String() {
		t.Fatalf("expired and invalid must share one message: %q vs %q",
			recExpired.Body.String(), recInvalid.Body.String())
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	users := newFakeUsers(seedUser(t, "alice@example.com", "pw", true))
	h, _, _, _, _ := newTestAuthHandler(users)

	rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup",
		`{"email":"alice@example.com","password":"pw","name":"Dup"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
