package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentica/dentica/internal/platform/apperr"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo, *fixture) {
	t.Helper()
	f := newFixture(t)
	return NewHandler(f.svc), echo.New(), f
}

func TestHandler_Create(t *testing.T) {
	h, e, f := newTestHandler(t)

	body := fmt.Sprintf(`{
		"patient_id": %q,
		"dentist_id": %q,
		"scheduled_by": %q,
		"appointment_date": "2025-03-10T00:00:00Z",
		"start_time": "2025-03-10T02:00:00Z",
		"end_time": "2025-03-10T03:00:00Z"
	}`, f.patientID, f.dentistID, f.staffID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var env struct {
		Success bool        `json:"success"`
		Data    Appointment `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &env)
	if !env.Success {
		t.Error("expected success envelope")
	}
	if env.Data.Status != StatusPending {
		t.Errorf("expected pending, got %s", env.Data.Status)
	}
}

func TestHandler_Create_BadBody(t *testing.T) {
	h, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(`{"patient_id":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHandler_Get(t *testing.T) {
	h, e, f := newTestHandler(t)
	created, err := f.svc.Create(context.Background(), f.booking(t, "10:00", "11:00"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.Get(c); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestHandler_Get_InvalidID(t *testing.T) {
	h, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.Get(c); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHandler_List_FilterByDentist(t *testing.T) {
	h, e, f := newTestHandler(t)
	if _, err := f.svc.Create(context.Background(), f.booking(t, "10:00", "11:00")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?dentist_id="+f.dentistID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var env struct {
		Data struct {
			Items []*Appointment `json:"items"`
			Total int            `json:"total"`
		} `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Data.Total != 1 {
		t.Errorf("expected 1 appointment, got %d", env.Data.Total)
	}
}

func TestHandler_List_BadFilter(t *testing.T) {
	h, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?dentist_id=bogus", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHandler_ConfirmAndCancel(t *testing.T) {
	h, e, f := newTestHandler(t)
	created, err := f.svc.Create(context.Background(), f.booking(t, "10:00", "11:00"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	patch := func(fn echo.HandlerFunc) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(created.ID.String())
		if err := fn(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return rec
	}

	rec := patch(h.Confirm)
	var env struct {
		Data Appointment `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Data.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", env.Data.Status)
	}

	rec = patch(h.Cancel)
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Data.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", env.Data.Status)
	}
}

func TestHandler_Reschedule(t *testing.T) {
	h, e, f := newTestHandler(t)
	created, err := f.svc.Create(context.Background(), f.booking(t, "10:00", "11:00"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{
		"new_date": "2025-03-10T00:00:00Z",
		"new_start_time": "2025-03-10T06:00:00Z",
		"new_end_time": "2025-03-10T07:00:00Z"
	}`
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())

	if err := h.Reschedule(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var env struct {
		Data Appointment `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Data.Status != StatusRescheduled {
		t.Errorf("expected rescheduled, got %s", env.Data.Status)
	}
}

func TestHandler_AssignDentist_MissingID(t *testing.T) {
	h, e, f := newTestHandler(t)
	created, err := f.svc.Create(context.Background(), f.booking(t, "10:00", "11:00"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())

	if err := h.AssignDentist(c); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHandler_AvailableSlots(t *testing.T) {
	h, e, f := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/availability/slots?dentist_id="+f.dentistID.String()+"&date=2025-03-10&duration=60", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.AvailableSlots(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var env struct {
		Data []Slot `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &env)
	if len(env.Data) == 0 {
		t.Error("expected open slots")
	}
}

func TestHandler_AvailableSlots_MissingDate(t *testing.T) {
	h, e, f := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability/slots?dentist_id="+f.dentistID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.AvailableSlots(c); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
