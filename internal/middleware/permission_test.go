package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/adisurya/hr-admin-api/internal/model"
)

// fakePerms resolves a fixed permission list for every user.
type fakePerms struct {
	perms []model.Permission
	err   error
}

func (f *fakePerms) ResolveForUser(context.Context, uint64) ([]model.Permission, error) {
	return f.perms, f.err
}

func runPermission(t *testing.T, uid interface{}, src PermissionSource, names ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != nil {
		c.Set("user_id", uid)
	}
	h := RequirePermission(src, names...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestRequirePermission(t *testing.T) {
	granted := &fakePerms{perms: []model.Permission{{ID: 1, Name: "users:manage"}}}
	tests := []struct {
		name string
		uid  interface{}
		src  PermissionSource
		want int
	}{
		{"granted", uint64(1), granted, http.StatusOK},
		{"not granted", uint64(1), &fakePerms{}, http.StatusForbidden},
		{"empty set (no role)", uint64(1), &fakePerms{perms: nil}, http.StatusForbidden},
		{"no identity", nil, granted, http.StatusUnauthorized},
		{"resolver failure", uint64(1), &fakePerms{err: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := runPermission(t, tc.uid, tc.src, "users:manage")
			if rec.Code != tc.want {
				t.Fatalf("want %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRequirePermissionAnyOf(t *testing.T) {
	src := &fakePerms{perms: []model.Permission{{ID: 2, Name: "reports:view"}}}
	rec := runPermission(t, uint64(9), src, "users:manage", "reports:view")
	if rec.Code != http.StatusOK {
		t.Fatalf("any-of match must pass, got %d", rec.Code)
	}
}
