package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

func TestRequestID_GeneratesNew(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid == "" {
			t.Error("expected request_id to be generated")
		}
		return c.String(http.StatusOK, "ok")
	}

	h := RequestID()(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		if c.Get("request_id").(string) != "client-supplied-id" {
			t.Error("expected inbound request id to be preserved")
		}
		return c.String(http.StatusOK, "ok")
	}

	h := RequestID()(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) != "client-supplied-id" {
		t.Error("expected response header to echo the inbound id")
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	logger := zerolog.New(os.Stderr)
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	h := Logger(logger)(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestLogger_RecordsStaffIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	h := auth.DevAuthMiddleware()(Logger(logger)(handler))
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, `"staff_id":"dev-user"`) {
		t.Errorf("expected staff_id in request log, got %s", line)
	}
	if !strings.Contains(line, `"staff_roles":["admin"]`) {
		t.Errorf("expected staff_roles in request log, got %s", line)
	}
}

func TestLogger_AnonymousRequestOmitsStaff(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	h := Logger(logger)(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "staff_id") {
		t.Errorf("expected no staff fields for unauthenticated request, got %s", buf.String())
	}
}

func TestRecovery_RecoversPanic(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	logger := zerolog.New(os.Stderr)
	handler := func(c echo.Context) error {
		panic("boom")
	}

	h := Recovery(logger)(handler)
	err := h(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 HTTPError, got %v", err)
	}
}
