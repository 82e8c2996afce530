package availability

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
	// Reads are open to any authenticated user; writes are restricted to
	// the dentist's own schedule managers.
	api.GET("/availability/dentist-availability", h.ListWeekly)
	api.GET("/availability/dentist-availability/:id", h.GetWeekly)
	api.GET("/availability/specific-availability", h.ListSpecific)
	api.GET("/availability/specific-availability/:id", h.GetSpecific)
	api.GET("/availability/leaves", h.ListLeaves)
	api.GET("/availability/leaves/:id", h.GetLeave)

	write := api.Group("", auth.RequireRole(auth.RoleDentist, auth.RoleSecretary, auth.RoleSuperAdmin))
	write.POST("/availability/dentist-availability", h.CreateWeekly)
	write.PUT("/availability/dentist-availability/:id", h.UpdateWeekly)
	write.DELETE("/availability/dentist-availability/:id", h.DeleteWeekly)
	write.POST("/availability/specific-availability", h.CreateSpecific)
	write.PUT("/availability/specific-availability/:id", h.UpdateSpecific)
	write.DELETE("/availability/specific-availability/:id", h.DeleteSpecific)
	write.POST("/availability/leaves", h.CreateLeave)
	write.PUT("/availability/leaves/:id", h.UpdateLeave)
	write.DELETE("/availability/leaves/:id", h.DeleteLeave)
}

// -- Weekly Handlers --

func (h *Handler) CreateWeekly(c echo.Context) error {
	var w Weekly
	if err := c.Bind(&w); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	if err := h.svc.CreateWeekly(c.Request().Context(), &w); err != nil {
		return err
	}
	return apperr.Created(c, w, "dentist availability created")
}

func (h *Handler) GetWeekly(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	w, err := h.svc.GetWeekly(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return apperr.OK(c, w, "dentist availability retrieved")
}

func (h *Handler) ListWeekly(c echo.Context) error {
	pg := pagination.FromContext(c)
	dentistID, err := uuid.Parse(c.QueryParam("dentist_id"))
	if err != nil {
		return apperr.Validation("dentist_id query parameter required")
	}
	items, total, err := h.svc.ListWeeklyByDentist(c.Request().Context(), dentistID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return apperr.OK(c, pagination.NewResponse(items, total, pg.Limit, pg.Offset), "dentist availability listed")
}

func (h *Handler) UpdateWeekly(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var w Weekly
	if err := c.Bind(&w); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	w.ID = id
	if err := h.svc.UpdateWeekly(c.Request().Context(), &w); err != nil {
		return err
	}
	return apperr.OK(c, w, "dentist availability updated")
}

func (h *Handler) DeleteWeekly(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.DeleteWeekly(c.Request().Context(), id); err != nil {
		return err
	}
	return apperr.OK(c, nil, "dentist availability deleted")
}

// -- Specific Handlers --

func (h *Handler) CreateSpecific(c echo.Context) error {
	var sp Specific
	if err := c.Bind(&sp); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	if err := h.svc.CreateSpecific(c.Request().Context(), &sp); err != nil {
		return err
	}
	return apperr.Created(c, sp, "specific availability created")
}

func (h *Handler) GetSpecific(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	sp, err := h.svc.GetSpecific(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return apperr.OK(c, sp, "specific availability retrieved")
}

func (h *Handler) ListSpecific(c echo.Context) error {
	pg := pagination.FromContext(c)
	dentistID, err := uuid.Parse(c.QueryParam("dentist_id"))
	if err != nil {
		return apperr.Validation("dentist_id query parameter required")
	}
	items, total, err := h.svc.ListSpecificByDentist(c.Request().Context(), dentistID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return apperr.OK(c, pagination.NewResponse(items, total, pg.Limit, pg.Offset), "specific availability listed")
}

func (h *Handler) UpdateSpecific(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var sp Specific
	if err := c.Bind(&sp); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	sp.ID = id
	if err := h.svc.UpdateSpecific(c.Request().Context(), &sp); err != nil {
		return err
	}
	return apperr.OK(c, sp, "specific availability updated")
}

func (h *Handler) DeleteSpecific(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.DeleteSpecific(c.Request().Context(), id); err != nil {
		return err
	}
	return apperr.OK(c, nil, "specific availability deleted")
}

// -- Leave Handlers --

func (h *Handler) CreateLeave(c echo.Context) error {
	var l Leave
	if err := c.Bind(&l); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	if err := h.svc.CreateLeave(c.Request().Context(), &l); err != nil {
		return err
	}
	return apperr.Created(c, l, "leave created")
}

func (h *Handler) GetLeave(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	l, err := h.svc.GetLeave(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return apperr.OK(c, l, "leave retrieved")
}

func (h *Handler) ListLeaves(c echo.Context) error {
	pg := pagination.FromContext(c)
	dentistID, err := uuid.Parse(c.QueryParam("dentist_id"))
	if err != nil {
		return apperr.Validation("dentist_id query parameter required")
	}
	items, total, err := h.svc.ListLeavesByDentist(c.Request().Context(), dentistID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return apperr.OK(c, pagination.NewResponse(items, total, pg.Limit, pg.Offset), "leaves listed")
}

func (h *Handler) UpdateLeave(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var l Leave
	if err := c.Bind(&l); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	l.ID = id
	if err := h.svc.UpdateLeave(c.Request().Context(), &l); err != nil {
		return err
	}
	return apperr.OK(c, l, "leave updated")
}

func (h *Handler) DeleteLeave(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.DeleteLeave(c.Request().Context(), id); err != nil {
		return err
	}
	return apperr.OK(c, nil, "leave deleted")
}
