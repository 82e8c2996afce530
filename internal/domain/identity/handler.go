package identity

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentica/dentica/internal/platform/apperr"
	"github.com/dentica/dentica/internal/platform/auth"
	"github.com/dentica/dentica/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(auth.RoleSecretary, auth.RoleSuperAdmin))
	staff.POST("/users", h.CreateUser)
	staff.PUT("/users/:id", h.UpdateUser)
	staff.DELETE("/users/:id", h.DeleteUser)
	staff.POST("/branches", h.CreateBranch)
	staff.PUT("/branches/:id", h.UpdateBranch)
	staff.DELETE("/branches/:id", h.DeleteBranch)

	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
	api.GET("/branches", h.ListBranches)
	api.GET("/branches/:id", h.GetBranch)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var u User
	if err := c.Bind(&u); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	if err := h.svc.CreateUser(c.Request().Context(), &u); err != nil {
		return err
	}
	return apperr.Created(c, u, "user created")
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return apperr.OK(c, u, "")
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	role := c.QueryParam("role")
	if role == "" {
		return apperr.Validation("role query parameter is required")
	}
	items, total, err := h.svc.ListUsersByRole(c.Request().Context(), role, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return apperr.OK(c, pagination.NewResponse(items, total, pg.Limit, pg.Offset), "")
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var u User
	if err := c.Bind(&u); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	u.ID = id
	if err := h.svc.UpdateUser(c.Request().Context(), &u); err != nil {
		return err
	}
	return apperr.OK(c, u, "user updated")
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return apperr.OK(c, nil, "user deleted")
}

func (h *Handler) CreateBranch(c echo.Context) error {
	var b Branch
	if err := c.Bind(&b); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	if err := h.svc.CreateBranch(c.Request().Context(), &b); err != nil {
		return err
	}
	return apperr.Created(c, b, "branch created")
}

func (h *Handler) GetBranch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	b, err := h.svc.GetBranch(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return apperr.OK(c, b, "")
}

func (h *Handler) ListBranches(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBranches(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return apperr.OK(c, pagination.NewResponse(items, total, pg.Limit, pg.Offset), "")
}

func (h *Handler) UpdateBranch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var b Branch
	if err := c.Bind(&b); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	b.ID = id
	if err := h.svc.UpdateBranch(c.Request().Context(), &b); err != nil {
		return err
	}
	return apperr.OK(c, b, "branch updated")
}

func (h *Handler) DeleteBranch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.DeleteBranch(c.Request().Context(), id); err != nil {
		return err
	}
	return apperr.OK(c, nil, "branch deleted")
}
