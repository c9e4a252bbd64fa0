package doctor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func setupHandler() (*Handler, *mockRepo) {
	repo := newMockRepo()
	return NewHandler(NewService(repo)), repo
}

func TestHandlerCreateDoctorDefaultsActive(t *testing.T) {
	h, _ := setupHandler()
	e := echo.New()

	body := `{"first_name":"Gregory","last_name":"House","specialization":"diagnostics"}`
	req := httptest.NewRequest(http.MethodPost, "/doctors", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateDoctor(c); err != nil {
		t.Fatalf("CreateDoctor handler failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Doctor
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !got.Active {
		t.Error("expected new doctor to default to active")
	}
}

func TestHandlerCreateDoctorExplicitInactive(t *testing.T) {
	h, _ := setupHandler()
	e := echo.New()

	body := `{"first_name":"James","last_name":"Wilson","specialization":"oncology","active":false}`
	req := httptest.NewRequest(http.MethodPost, "/doctors", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateDoctor(c); err != nil {
		t.Fatalf("CreateDoctor handler failed: %v", err)
	}
	var got Doctor
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Active {
		t.Error("expected explicit active=false to be honored")
	}
}

func TestHandlerDeactivateDoctor(t *testing.T) {
	h, repo := setupHandler()
	e := echo.New()

	d := &Doctor{FirstName: "Gregory", LastName: "House", Specialization: "diagnostics", Active: true}
	if err := repo.Create(context.Background(), d); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/doctors/"+d.ID.String()+"/deactivate", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(d.ID.String())

	if err := h.DeactivateDoctor(c); err != nil {
		t.Fatalf("DeactivateDoctor handler failed: %v", err)
	}
	var got Doctor
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Active {
		t.Error("expected doctor to be inactive")
	}
}

func TestHandlerGetDoctorNotFound(t *testing.T) {
	h, _ := setupHandler()
	e := echo.New()

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/doctors/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	err := h.GetDoctor(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404 HTTPError, got %v", err)
	}
}

func TestHandlerListDoctorsActiveFilter(t *testing.T) {
	h, repo := setupHandler()
	e := echo.New()

	for _, d := range []*Doctor{
		{FirstName: "Gregory", LastName: "House", Specialization: "diagnostics", Active: true},
		{FirstName: "James", LastName: "Wilson", Specialization: "oncology", Active: false},
	} {
		if err := repo.Create(context.Background(), d); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/doctors?active=true", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListDoctors(c); err != nil {
		t.Fatalf("ListDoctors handler failed: %v", err)
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("expected 1 active doctor, got %d", resp.Total)
	}
}
