package handler

import (
    "context"      // provides context with cancellation for DB calls
    "errors"       // sentinel comparisons against repository errors
    "net/http"     // HTTP status codes and primitives
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/adisurya/hr-admin-api/internal/config"
    "github.com/adisurya/hr-admin-api/internal/model"
    "github.com/adisurya/hr-admin-api/internal/queue"
    "github.com/adisurya/hr-admin-api/internal/repository"
    "github.com/adisurya/hr-admin-api/internal/utils"
)

// UserStore is the slice of the user repository the auth endpoints
// consume. *repository.UserRepo satisfies it.
type UserStore interface {
    Create(ctx context.Context, email, password, name string, phone *string, defaultRoleID uint64, cost int) (uint64, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
    PrimaryRole(ctx context.Context, userID uint64) (model.Role, error)
}

// SessionStore persists bearer sessions. *repository.SessionRepo
// satisfies it.
type SessionStore interface {
    Store(ctx context.Context, userID uint64, tokenHash string) error
    Invalidate(ctx context.Context, userID uint64, tokenHash string) error
    InvalidateAllForUser(ctx context.Context, userID uint64) error
}

// ResetTokenStore issues and redeems one-time password-reset codes.
// Redeem consumes the code and replaces the owner's password hash in
// one transaction. *repository.LoginTokenRepo satisfies it.
type ResetTokenStore interface {
    Issue(ctx context.Context, userID uint64, ttl time.Duration) (string, error)
    Redeem(ctx context.Context, code, password string, cost int) (uint64, error)
}

// ResetMailer delivers the one-time code out of band.
type ResetMailer interface {
    SendPasswordReset(to, code string, ttl time.Duration) error
}

// AuditPublisher emits auth audit events; failures never interrupt
// the request flow.
type AuditPublisher interface {
    Publish(ctx context.Context, event queue.AuthAuditEvent) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg      config.Config
    Users    UserStore
    Sessions SessionStore
    Resets   ResetTokenStore
    Mail     ResetMailer
    Audit    AuditPublisher
}

func NewAuthHandler(cfg config.Config, u UserStore, s SessionStore, r ResetTokenStore, m ResetMailer, a AuditPublisher) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Resets: r, Mail: m, Audit: a}
}

// ----- DTOs -----

type signupReq struct {
    Email    string  `json:"email"`
    Password string  `json:"password"`
    Name     string  `json:"name"`
    Phone    *string `json:"phone"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type forgotReq struct {
    Email string `json:"email"`
}
type changePasswordReq struct {
    Token    string `json:"token"`
    Password string `json:"password"`
}

type rolePart struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
}
type profilePart struct {
    ID      uint64    `json:"id"`
    Email   string    `json:"email"`
    Name    string    `json:"name"`
    Phone   *string   `json:"phone"`
    Address *string   `json:"address"`
    Photo   *string   `json:"photo"`
    Active  bool      `json:"is_active"`
    Role    *rolePart `json:"role"`
}
type loginResp struct {
    User    profilePart `json:"user"`
    Token   string      `json:"token"`
    Expires time.Time   `json:"expires"`
}

// invalidCredentials is the single response body for every login
// failure. Unknown email, wrong password and inactive account must
// be indistinguishable to the caller.
func invalidCredentials(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
}

func (h *AuthHandler) profileOf(ctx context.Context, u model.User) profilePart {
    p := profilePart{
        ID:      u.ID,
        Email:   u.Email,
        Name:    u.Name,
        Phone:   u.Phone,
        Address: u.Address,
        Photo:   u.Photo,
        Active:  u.IsActive,
    }
    if role, err := h.Users.PrimaryRole(ctx, u.ID); err == nil {
        p.Role = &rolePart{ID: role.ID, Name: role.Name}
    }
    return p
}

func (h *AuthHandler) audit(c echo.Context, evType string, userID uint64, email, detail string) {
    if h.Audit == nil {
        return
    }
    _ = h.Audit.Publish(c.Request().Context(), queue.AuthAuditEvent{
        Type:     evType,
        UserID:   userID,
        Email:    email,
        RemoteIP: c.RealIP(),
        Detail:   detail,
    })
}

// Signup: create a user with the default role.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.Name = strings.TrimSpace(req.Name)
    if req.Email == "" || req.Password == "" || req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password/name required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Name, req.Phone, h.Cfg.DefaultRoleID, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        c.Logger().Errorf("signup failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    h.audit(c, queue.EventSignup, uid, req.Email, "")
    return c.JSON(http.StatusCreated, echo.Map{"id": uid, "email": req.Email})
}

// Login: verify credentials, issue a JWT and persist its session row.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return invalidCredentials(c)
        }
        c.Logger().Errorf("login query failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return invalidCredentials(c)
    }

    roleGroup := ""
    if role, err := h.Users.PrimaryRole(ctx, u.ID); err == nil {
        roleGroup = role.Group
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, roleGroup, h.Cfg.AccessTTLMin)
    if err != nil {
        c.Logger().Errorf("token issue failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    if err := h.Sessions.Store(ctx, u.ID, utils.HashSessionToken(access.Token)); err != nil {
        c.Logger().Errorf("session store failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
    }

    h.audit(c, queue.EventLogin, u.ID, u.Email, "")
    return c.JSON(http.StatusOK, loginResp{
        User:    h.profileOf(ctx, u),
        Token:   access.Token,
        Expires: access.Exp,
    })
}

// Logout: invalidate the current session (protected route).
func (h *AuthHandler) Logout(c echo.Context) error {
    uid, ok := c.Get("user_id").(uint64)
    raw, _ := c.Get("token").(string)
    if !ok || raw == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Sessions.Invalidate(ctx, uid, utils.HashSessionToken(raw)); err != nil {
        if errors.Is(err, repository.ErrNoActiveSession) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no active session"})
        }
        c.Logger().Errorf("logout failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
    }

    h.audit(c, queue.EventLogout, uid, "", "")
    return c.NoContent(http.StatusNoContent)
}

// Me: return the caller's profile plus a refreshed token. The fresh
// token gets its own session row so either token can be logged out
// independently.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, ok := c.Get("user_id").(uint64)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        c.Logger().Errorf("load user failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }

    roleGroup, _ := c.Get("role").(string)
    refreshed, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, roleGroup, h.Cfg.AccessTTLMin)
    if err != nil {
        c.Logger().Errorf("token issue failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    if err := h.Sessions.Store(ctx, u.ID, utils.HashSessionToken(refreshed.Token)); err != nil {
        c.Logger().Errorf("session store failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "user":            h.profileOf(ctx, u),
        "refreshed_token": refreshed.Token,
        "expires":         refreshed.Exp,
    })
}

// ForgotPassword: issue a one-time code and email it. The response
// is success-shaped whether or not the email exists so the endpoint
// cannot be used to enumerate accounts; the real work happens only
// when a matching active user is found.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
    var req forgotReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }
    email := strings.ToLower(strings.TrimSpace(req.Email))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    accepted := func() error {
        return c.JSON(http.StatusOK, echo.Map{"message": "if the address exists, a reset code has been sent"})
    }

    u, err := h.Users.GetByEmail(ctx, email)
    if err != nil {
        if !errors.Is(err, repository.ErrNotFound) {
            c.Logger().Errorf("forgot-password lookup failed: %v", err)
        }
        return accepted()
    }
    if !u.IsActive {
        return accepted()
    }

    ttl := time.Duration(h.Cfg.ResetTTLMin) * time.Minute
    code, err := h.Resets.Issue(ctx, u.ID, ttl)
    if err != nil {
        c.Logger().Errorf("reset code issue failed: %v", err)
        return accepted()
    }
    if err := h.Mail.SendPasswordReset(u.Email, code, ttl); err != nil {
        // Delivery is best-effort; the code stays valid should the
        // operator resend it manually.
        c.Logger().Errorf("reset mail failed: %v", err)
    }
    return accepted()
}

// ChangePassword: redeem a one-time code (code burn plus re-hash in
// one transaction) and kill every active session of the user.
// Expired and unknown codes share one message.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
    var req changePasswordReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Token = strings.ToUpper(strings.TrimSpace(req.Token))
    if req.Token == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Resets.Redeem(ctx, req.Token, req.Password, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrTokenInvalid) || errors.Is(err, repository.ErrTokenExpired) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
        }
        c.Logger().Errorf("reset redeem failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "change password failed"})
    }
    if err := h.Sessions.InvalidateAllForUser(ctx, uid); err != nil {
        c.Logger().Errorf("session purge failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "change password failed"})
    }

    h.audit(c, queue.EventPasswordChanged, uid, "", "")
    return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}
