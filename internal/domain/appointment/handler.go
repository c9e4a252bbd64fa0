package appointment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/doctor"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
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
	g := api.Group("", auth.RequireRole("reception", "nurse", "doctor"))
	g.GET("/appointments", h.ListAppointments)
	g.GET("/appointments/:id", h.GetAppointment)
	g.POST("/appointments", h.CreateAppointment)
	g.PUT("/appointments/:id", h.UpdateAppointment)
	g.PUT("/appointments/:id/status", h.UpdateStatus)
	g.DELETE("/appointments/:id", h.DeleteAppointment)
}

func mapAppointmentError(err error) error {
	var vErr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, doctor.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	case errors.Is(err, patient.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrSlotConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrDoctorInactive), errors.Is(err, ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &vErr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return mapAppointmentError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapAppointmentError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// ListAppointments handles the general listing plus the by-doctor,
// by-patient, single-day and date-range queries, distinguished by query
// parameters.
func (h *Handler) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()

	if doctorID := c.QueryParam("doctor_id"); doctorID != "" {
		id, err := uuid.Parse(doctorID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		items, err := h.svc.ListByDoctor(ctx, id)
		if err != nil {
			return mapAppointmentError(err)
		}
		return c.JSON(http.StatusOK, emptyIfNil(items))
	}
	if patientID := c.QueryParam("patient_id"); patientID != "" {
		id, err := uuid.Parse(patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, err := h.svc.ListByPatient(ctx, id)
		if err != nil {
			return mapAppointmentError(err)
		}
		return c.JSON(http.StatusOK, emptyIfNil(items))
	}
	if date := c.QueryParam("date"); date != "" {
		items, err := h.svc.ListByDay(ctx, date)
		if err != nil {
			return mapAppointmentError(err)
		}
		return c.JSON(http.StatusOK, emptyIfNil(items))
	}
	if from, to := c.QueryParam("from"), c.QueryParam("to"); from != "" && to != "" {
		items, err := h.svc.ListByRange(ctx, from, to)
		if err != nil {
			return mapAppointmentError(err)
		}
		return c.JSON(http.StatusOK, emptyIfNil(items))
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return mapAppointmentError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return mapAppointmentError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return mapAppointmentError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapAppointmentError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func emptyIfNil(items []*Appointment) []*Appointment {
	if items == nil {
		return []*Appointment{}
	}
	return items
}
