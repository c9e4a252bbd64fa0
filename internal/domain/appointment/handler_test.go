package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func setupHandler() (*Handler, *mockDoctors, *mockPatients) {
	repo := newMockRepo()
	doctors := newMockDoctors()
	patients := newMockPatients()
	return NewHandler(NewService(repo, doctors, patients)), doctors, patients
}

func TestHandlerCreateAppointment(t *testing.T) {
	h, doctors, patients := setupHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"scheduled_at":%q}`,
		doctors.add(true).String(), patients.add().String(), slot)
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("CreateAppointment handler failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Status != StatusBooked {
		t.Errorf("expected booked, got %s", got.Status)
	}
}

func TestHandlerCreateAppointmentConflict(t *testing.T) {
	h, doctors, patients := setupHandler()
	e := echo.New()
	doctorID := doctors.add(true)

	if _, err := h.svc.Create(context.Background(), CreateInput{
		DoctorID: doctorID, PatientID: patients.add(), ScheduledAt: slot,
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"scheduled_at":%q}`,
		doctorID.String(), patients.add().String(), slot)
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateAppointment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409 HTTPError, got %v", err)
	}
}

func TestHandlerCreateAppointmentBadTimestamp(t *testing.T) {
	h, doctors, patients := setupHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"scheduled_at":"tomorrow"}`,
		doctors.add(true).String(), patients.add().String())
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateAppointment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandlerCreateAppointmentMissingDoctor(t *testing.T) {
	h, _, patients := setupHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"scheduled_at":%q}`, patients.add().String(), slot)
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateAppointment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandlerListAppointmentsByDate(t *testing.T) {
	h, doctors, patients := setupHandler()
	e := echo.New()
	doctorID := doctors.add(true)

	for _, at := range []string{"2026-09-01T10:00:00Z", "2026-09-02T10:00:00Z"} {
		if _, err := h.svc.Create(context.Background(), CreateInput{
			DoctorID: doctorID, PatientID: patients.add(), ScheduledAt: at,
		}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/appointments?date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListAppointments(c); err != nil {
		t.Fatalf("ListAppointments handler failed: %v", err)
	}
	var got []*Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 appointment on that date, got %d", len(got))
	}
}

func TestHandlerListAppointmentsByDoctor(t *testing.T) {
	h, doctors, patients := setupHandler()
	e := echo.New()
	d1 := doctors.add(true)
	d2 := doctors.add(true)

	if _, err := h.svc.Create(context.Background(), CreateInput{DoctorID: d1, PatientID: patients.add(), ScheduledAt: slot}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := h.svc.Create(context.Background(), CreateInput{DoctorID: d2, PatientID: patients.add(), ScheduledAt: slot}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/appointments?doctor_id="+d1.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListAppointments(c); err != nil {
		t.Fatalf("ListAppointments handler failed: %v", err)
	}
	var got []*Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].DoctorID != d1 {
		t.Errorf("expected 1 appointment for doctor, got %d", len(got))
	}
}

func TestHandlerUpdateStatus(t *testing.T) {
	h, doctors, patients := setupHandler()
	e := echo.New()

	a, err := h.svc.Create(context.Background(), CreateInput{
		DoctorID: doctors.add(true), PatientID: patients.add(), ScheduledAt: slot,
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/appointments/"+a.ID.String()+"/status",
		strings.NewReader(`{"status":"confirmed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("UpdateStatus handler failed: %v", err)
	}
	var got Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", got.Status)
	}
}
