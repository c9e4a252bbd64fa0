package doctor

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.ListDoctors, auth.RequireRole("reception", "nurse", "doctor"))
	api.GET("/doctors/:id", h.GetDoctor, auth.RequireRole("reception", "nurse", "doctor"))

	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/doctors", h.CreateDoctor)
	admin.PUT("/doctors/:id", h.UpdateDoctor)
	admin.POST("/doctors/:id/deactivate", h.DeactivateDoctor)
	admin.DELETE("/doctors/:id", h.DeleteDoctor)
}

type createDoctorRequest struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Specialization string  `json:"specialization"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	Active         *bool   `json:"active"`
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var req createDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d := &Doctor{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Specialization: req.Specialization,
		Phone:          req.Phone,
		Email:          req.Email,
		Active:         true,
	}
	if req.Active != nil {
		d.Active = *req.Active
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	activeOnly := c.QueryParam("active") == "true"

	items, total, err := h.svc.ListDoctors(c.Request().Context(), activeOnly, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.ID = id
	if err := h.svc.UpdateDoctor(c.Request().Context(), &d); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeactivateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Deactivate(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
