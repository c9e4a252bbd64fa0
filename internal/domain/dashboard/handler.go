package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.GetDashboard, auth.RequireRole("reception", "nurse", "doctor"))
}

func (h *Handler) GetDashboard(c echo.Context) error {
	summary, err := h.svc.GetSummary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}
