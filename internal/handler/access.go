package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adisurya/hr-admin-api/internal/model"
	"github.com/adisurya/hr-admin-api/internal/queue"
	"github.com/adisurya/hr-admin-api/internal/rbac"
	"github.com/adisurya/hr-admin-api/internal/repository"
)

// PermissionSource resolves a user's permission set.
// *repository.PermissionRepo satisfies it.
type PermissionSource interface {
	ResolveForUser(ctx context.Context, userID uint64) ([]model.Permission, error)
}

// MenuSource loads the full menu hierarchy.
// *repository.MenuRepo satisfies it.
type MenuSource interface {
	LoadTree(ctx context.Context) ([]*rbac.MenuNode, error)
}

// RoleStore is the slice of the role repository the access endpoints
// consume. *repository.RoleRepo satisfies it.
type RoleStore interface {
	ListActive(ctx context.Context) ([]model.Role, error)
	UpsertGrant(ctx context.Context, grant model.RoleGrant) error
	ActiveGrants(ctx context.Context, roleID uint64) ([]model.Permission, error)
}

// AccessHandler serves the permission list, the filtered menu tree
// and the role-management endpoints.
type AccessHandler struct {
	Perms PermissionSource
	Menus MenuSource
	Roles RoleStore
	Audit AuditPublisher
}

func NewAccessHandler(p PermissionSource, m MenuSource, r RoleStore, a AuditPublisher) *AccessHandler {
	return &AccessHandler{Perms: p, Menus: m, Roles: r, Audit: a}
}

// ----- DTOs -----

type modulePart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
type permissionPart struct {
	ID         uint64      `json:"id"`
	Permission string      `json:"permission"`
	Module     *modulePart `json:"module"`
}

func permissionParts(perms []model.Permission) []permissionPart {
	out := make([]permissionPart, 0, len(perms))
	for _, p := range perms {
		part := permissionPart{ID: p.ID, Permission: p.Name}
		if p.Module != nil {
			part.Module = &modulePart{ID: p.Module.ID, Name: p.Module.Name}
		}
		out = append(out, part)
	}
	return out
}

type grantUpdate struct {
	RoleID       uint64 `json:"role_id"`
	PermissionID uint64 `json:"permission_id"`
	IsActive     bool   `json:"is_active"`
}
type updateGrantsReq struct {
	Permissions []grantUpdate `json:"permissions"`
}

// Permissions returns the caller's resolved permission set with
// module grouping.
func (h *AccessHandler) Permissions(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	perms, err := h.Perms.ResolveForUser(ctx, uid)
	if err != nil {
		c.Logger().Errorf("permission resolve failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load permissions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": permissionParts(perms)})
}

// Menu returns the caller's filtered, pruned and ordered menu tree.
func (h *AccessHandler) Menu(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	perms, err := h.Perms.ResolveForUser(ctx, uid)
	if err != nil {
		c.Logger().Errorf("permission resolve failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load menu failed"})
	}
	roots, err := h.Menus.LoadTree(ctx)
	if err != nil {
		c.Logger().Errorf("menu load failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load menu failed"})
	}

	tree := rbac.BuildMenuTree(roots, rbac.NewPermissionSet(perms))
	if tree == nil {
		tree = []rbac.MenuItem{}
	}
	return c.JSON(http.StatusOK, echo.Map{"results": tree})
}

// RoleOptions returns the active roles for pickers.
func (h *AccessHandler) RoleOptions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	roles, err := h.Roles.ListActive(ctx)
	if err != nil {
		c.Logger().Errorf("role list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
	}
	results := make([]echo.Map, 0, len(roles))
	for _, r := range roles {
		results = append(results, echo.Map{"id": r.ID, "name": r.Name, "group": r.Group})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// RoleManagement lists every active role together with its active
// permission grants, for the admin grant matrix.
func (h *AccessHandler) RoleManagement(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	roles, err := h.Roles.ListActive(ctx)
	if err != nil {
		c.Logger().Errorf("role list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
	}

	results := make([]echo.Map, 0, len(roles))
	for _, r := range roles {
		grants, err := h.Roles.ActiveGrants(ctx, r.ID)
		if err != nil {
			c.Logger().Errorf("grant list failed for role %d: %v", r.ID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
		}
		results = append(results, echo.Map{
			"role_id":     r.ID,
			"name":        r.Name,
			"description": r.Description,
			"group":       r.Group,
			"permissions": permissionParts(grants),
			"is_active":   r.IsActive,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// UpdateGrants applies a batch of grant toggles. Each row is an
// atomic upsert; the first unknown role or permission aborts the
// remainder with a 404.
func (h *AccessHandler) UpdateGrants(c echo.Context) error {
	var req updateGrantsReq
	if err := c.Bind(&req); err != nil || len(req.Permissions) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "permissions required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated := make([]grantUpdate, 0, len(req.Permissions))
	for _, g := range req.Permissions {
		grant := model.RoleGrant{RoleID: g.RoleID, PermissionID: g.PermissionID, IsActive: g.IsActive}
		if err := h.Roles.UpsertGrant(ctx, grant); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "role or permission not found"})
			}
			c.Logger().Errorf("grant upsert failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update permissions failed"})
		}
		updated = append(updated, g)
	}

	if uid, ok := c.Get("user_id").(uint64); ok && h.Audit != nil {
		_ = h.Audit.Publish(c.Request().Context(), queue.AuthAuditEvent{
			Type:   queue.EventGrantUpdated,
			UserID: uid,
			Detail: "grants updated",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated_permissions": updated})
}
