package middleware

// identity.go defines helper functions shared across middleware files.
// It provides a user identifier extraction function used for rate-limit
// and cache key construction. When no user is authenticated, "guest"
// is returned so unauthenticated traffic shares one bucket per IP.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userKey extracts a user identifier from the request context for
// key-building purposes. JWTAuth stores the subject under "user_id"
// as uint64; anything else yields "guest".
func userKey(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case string:
		if v != "" {
			return v
		}
	}
	return "guest"
}
