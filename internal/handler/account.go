package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adisurya/hr-admin-api/internal/model"
	"github.com/adisurya/hr-admin-api/internal/repository"
)

// AccountStore is the slice of the user repository the admin
// account endpoints consume. *repository.UserRepo satisfies it.
type AccountStore interface {
	List(ctx context.Context, page, pageSize int, search string) ([]model.User, int, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Update(ctx context.Context, id uint64, upd repository.UserUpdate) error
	PrimaryRole(ctx context.Context, userID uint64) (model.Role, error)
}

// AccountHandler serves the admin user-management endpoints. All of
// them sit behind the users:manage permission.
type AccountHandler struct {
	Users AccountStore
}

func NewAccountHandler(u AccountStore) *AccountHandler { return &AccountHandler{Users: u} }

type editUserReq struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"is_active"`
	RoleID   *uint64 `json:"role_id"`
}

func (h *AccountHandler) userPart(ctx context.Context, u model.User) echo.Map {
	part := echo.Map{
		"id":        u.ID,
		"email":     u.Email,
		"name":      u.Name,
		"phone":     u.Phone,
		"address":   u.Address,
		"photo":     u.Photo,
		"is_active": u.IsActive,
	}
	if role, err := h.Users.PrimaryRole(ctx, u.ID); err == nil {
		part["role"] = echo.Map{"id": role.ID, "name": role.Name}
	} else {
		part["role"] = nil
	}
	return part
}

// List returns one page of users with pagination metadata.
func (h *AccountHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	search := c.QueryParam("search")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, total, err := h.Users.List(ctx, page, pageSize, search)
	if err != nil {
		c.Logger().Errorf("user list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}

	results := make([]echo.Map, 0, len(users))
	for _, u := range users {
		results = append(results, echo.Map{"id": u.ID, "name": u.Name, "email": u.Email})
	}
	pageCount := (total + pageSize - 1) / pageSize
	return c.JSON(http.StatusOK, echo.Map{
		"results": results,
		"meta": echo.Map{
			"count":      total,
			"page":       page,
			"page_size":  pageSize,
			"page_count": pageCount,
		},
	})
}

// Detail returns the full profile of one user.
func (h *AccountHandler) Detail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("user detail failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, h.userPart(ctx, u))
}

// Edit applies a partial update, optionally reassigning the user's
// role, and returns the updated profile.
func (h *AccountHandler) Edit(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req editUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	upd := repository.UserUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		IsActive: req.IsActive,
		RoleID:   req.RoleID,
	}
	if err := h.Users.Update(ctx, id, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("user update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deactivating a user hides it from GetByID.
			return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": false})
		}
		c.Logger().Errorf("user reload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, h.userPart(ctx, u))
}
