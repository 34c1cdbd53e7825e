package middleware // middleware provides shared request processing for handlers

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/adisurya/hr-admin-api/internal/model"
)

// PermissionSource resolves the permission set of a user.
// *repository.PermissionRepo satisfies it; tests supply fakes.
type PermissionSource interface {
    ResolveForUser(ctx context.Context, userID uint64) ([]model.Permission, error)
}

// RequirePermission returns a middleware that enforces that the
// authenticated user holds at least one of the named permissions.
// It assumes JWTAuth has already stored the user ID in the context
// under "user_id". Users without any of the permissions receive a
// 403 Forbidden; resolver failures surface as 500 with the detail
// logged server-side only.
func RequirePermission(perms PermissionSource, names ...string) echo.MiddlewareFunc {
    // Build a set of required names for constant-time lookups.
    required := make(map[string]bool, len(names))
    for _, n := range names {
        required[n] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            uid, ok := c.Get("user_id").(uint64)
            if !ok || uid == 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
            }
            resolved, err := perms.ResolveForUser(c.Request().Context(), uid)
            if err != nil {
                c.Logger().Errorf("permission resolve failed: %v", err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
            }
            for _, p := range resolved {
                if required[p.Name] {
                    return next(c)
                }
            }
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
    }
}
