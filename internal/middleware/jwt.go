package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"  // request-scoped session lookups
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/adisurya/hr-admin-api/internal/utils"
)

// SessionChecker reports whether a bearer session row is still
// active. *repository.SessionRepo satisfies it; tests supply fakes.
type SessionChecker interface {
    IsActive(ctx context.Context, userID uint64, tokenHash string) (bool, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and confirms the backing session row has not been
// invalidated. A token that parses fine but whose session was logged
// out is rejected exactly like a malformed one. On success the
// subject, role and raw token are injected into the request context
// under "user_id", "role" and "token".
func JWTAuth(secret string, sessions SessionChecker) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            uid, role, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            // The signature alone is not enough: logout flips the
            // session row and must take effect before JWT expiry.
            ok, err := sessions.IsActive(c.Request().Context(), uid, utils.HashSessionToken(raw))
            if err != nil {
                c.Logger().Errorf("session lookup failed: %v", err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
            }
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            c.Set("user_id", uid)
            c.Set("role", role)
            c.Set("token", raw)
            return next(c)
        }
    }
}
