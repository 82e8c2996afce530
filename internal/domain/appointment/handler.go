package appointment

import (
	"context"
	"strconv"
	"time"

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
	// Booking and reads are open to any authenticated user. Management of
	// existing appointments is staff work.
	api.POST("/appointments", h.Create)
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
	api.GET("/availability/slots", h.AvailableSlots)

	manage := api.Group("", auth.RequireRole(auth.RoleDentist, auth.RoleSecretary, auth.RoleSuperAdmin))
	manage.PUT("/appointments/:id", h.Update)
	manage.DELETE("/appointments/:id", h.Delete)
	manage.PATCH("/appointments/:id/confirm", h.Confirm)
	manage.PATCH("/appointments/:id/cancel", h.Cancel)
	manage.PATCH("/appointments/:id/complete", h.Complete)
	manage.PATCH("/appointments/:id/reset-status", h.ResetStatus)
	manage.PATCH("/appointments/:id/reschedule", h.Reschedule)
	manage.PATCH("/appointments/:id/assign-dentist", h.AssignDentist)
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	created, err := h.svc.Create(c.Request().Context(), &a)
	if err != nil {
		return err
	}
	return apperr.Created(c, created, "appointment created")
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return apperr.OK(c, a, "appointment retrieved")
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	var f Filter
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.Validation("invalid patient_id")
		}
		f.PatientID = &id
	}
	if v := c.QueryParam("dentist_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.Validation("invalid dentist_id")
		}
		f.DentistID = &id
	}
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperr.Validation("invalid start_date, expected RFC 3339")
		}
		f.StartDate = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperr.Validation("invalid end_date, expected RFC 3339")
		}
		f.EndDate = &t
	}
	f.Status = c.QueryParam("status")

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return apperr.OK(c, pagination.NewResponse(items, total, pg.Limit, pg.Offset), "appointments listed")
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	a, err := h.svc.Update(c.Request().Context(), id, &in)
	if err != nil {
		return err
	}
	return apperr.OK(c, a, "appointment updated")
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return apperr.OK(c, nil, "appointment deleted")
}

func (h *Handler) Confirm(c echo.Context) error {
	return patchStatus(c, h.svc.Confirm, "appointment confirmed")
}

func (h *Handler) Cancel(c echo.Context) error {
	return patchStatus(c, h.svc.Cancel, "appointment cancelled")
}

func (h *Handler) Complete(c echo.Context) error {
	return patchStatus(c, h.svc.Complete, "appointment completed")
}

func (h *Handler) ResetStatus(c echo.Context) error {
	return patchStatus(c, h.svc.ResetStatus, "appointment status reset")
}

func patchStatus(c echo.Context, op func(ctx context.Context, id uuid.UUID) (*Appointment, error), message string) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	a, err := op(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return apperr.OK(c, a, message)
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var body struct {
		NewDate      time.Time  `json:"new_date"`
		NewStartTime time.Time  `json:"new_start_time"`
		NewEndTime   *time.Time `json:"new_end_time"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	a, err := h.svc.Reschedule(c.Request().Context(), id, body.NewDate, body.NewStartTime, body.NewEndTime)
	if err != nil {
		return err
	}
	return apperr.OK(c, a, "appointment rescheduled")
}

func (h *Handler) AssignDentist(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var body struct {
		DentistID uuid.UUID `json:"dentist_id"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.Validation("invalid request body").WithCause(err)
	}
	if body.DentistID == uuid.Nil {
		return apperr.Validation("dentist_id is required")
	}
	a, err := h.svc.AssignDentist(c.Request().Context(), id, body.DentistID)
	if err != nil {
		return err
	}
	return apperr.OK(c, a, "dentist assigned")
}

func (h *Handler) AvailableSlots(c echo.Context) error {
	dentistID, err := uuid.Parse(c.QueryParam("dentist_id"))
	if err != nil {
		return apperr.Validation("dentist_id query parameter required")
	}
	date := c.QueryParam("date")
	if date == "" {
		return apperr.Validation("date query parameter required")
	}
	duration := 30 * time.Minute
	if v := c.QueryParam("duration"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil || mins <= 0 {
			return apperr.Validation("invalid duration, expected minutes")
		}
		duration = time.Duration(mins) * time.Minute
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), dentistID, date, duration)
	if err != nil {
		return err
	}
	return apperr.OK(c, slots, "available slots listed")
}
