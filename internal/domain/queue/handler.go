package queue

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/ws"
)

// Broadcaster pushes queue change events to connected dashboards.
// Satisfied by *ws.Hub; nil-able in tests.
type Broadcaster interface {
	Broadcast(event ws.Event)
}

type Handler struct {
	svc *Service
	hub Broadcaster
}

func NewHandler(svc *Service, hub Broadcaster) *Handler {
	return &Handler{svc: svc, hub: hub}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("reception", "nurse", "doctor"))
	g.GET("/queue", h.ListQueue)
	g.GET("/queue/enhanced", h.GetEnhancedQueue)
	g.GET("/queue/stats", h.GetQueueStats)
	g.GET("/queue/analytics", h.GetQueueAnalytics)
	g.GET("/queue/next", h.GetNextPatient)
	g.POST("/queue", h.AddToQueue)
	g.POST("/queue/emergency", h.AddEmergency)
	g.POST("/queue/call-next", h.CallNext)
	g.PUT("/queue/:id/status", h.UpdateStatus)
	g.PUT("/queue/:id/priority", h.UpdatePriority)
	g.DELETE("/queue/:id", h.RemoveFromQueue)
}

// notify fans a queue.updated event out to dashboard clients. Mutating
// handlers call it after a successful write.
func (h *Handler) notify(entryID uuid.UUID) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(ws.NewEvent("queue.updated", "queue", entryID.String()))
}

func mapQueueError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "queue entry not found")
	case errors.Is(err, patient.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrDuplicateWaiting):
		return echo.NewHTTPError(http.StatusConflict, "patient already in queue")
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

type addRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	Priority  Priority  `json:"priority"`
	Notes     *string   `json:"notes"`
}

func (h *Handler) AddToQueue(c echo.Context) error {
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	e, err := h.svc.Add(c.Request().Context(), req.PatientID, req.Priority, req.Notes)
	if err != nil {
		return mapQueueError(err)
	}
	h.notify(e.ID)
	return c.JSON(http.StatusCreated, e)
}

type emergencyRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
}

func (h *Handler) AddEmergency(c echo.Context) error {
	var req emergencyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	e, err := h.svc.AddEmergency(c.Request().Context(), req.PatientID)
	if err != nil {
		return mapQueueError(err)
	}
	h.notify(e.ID)
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) ListQueue(c echo.Context) error {
	var status *Status
	if s := c.QueryParam("status"); s != "" {
		st := Status(s)
		if !st.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
		}
		status = &st
	}
	entries, err := h.svc.List(c.Request().Context(), status)
	if err != nil {
		return mapQueueError(err)
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) GetEnhancedQueue(c echo.Context) error {
	entries, err := h.svc.Enhanced(c.Request().Context())
	if err != nil {
		return mapQueueError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) GetQueueStats(c echo.Context) error {
	stats, err := h.svc.GetStats(c.Request().Context())
	if err != nil {
		return mapQueueError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetQueueAnalytics(c echo.Context) error {
	analytics, err := h.svc.GetAnalytics(c.Request().Context())
	if err != nil {
		return mapQueueError(err)
	}
	return c.JSON(http.StatusOK, analytics)
}

func (h *Handler) GetNextPatient(c echo.Context) error {
	next, err := h.svc.NextPatient(c.Request().Context())
	if err != nil {
		return mapQueueError(err)
	}
	if next == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"entry": nil})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"entry": next})
}

func (h *Handler) CallNext(c echo.Context) error {
	result, err := h.svc.CallNext(c.Request().Context())
	if err != nil {
		return mapQueueError(err)
	}
	if result.Entry != nil {
		h.notify(result.Entry.ID)
	}
	return c.JSON(http.StatusOK, result)
}

type statusRequest struct {
	Status Status `json:"status"`
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
	e, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return mapQueueError(err)
	}
	h.notify(e.ID)
	return c.JSON(http.StatusOK, e)
}

type priorityRequest struct {
	Priority Priority `json:"priority"`
}

func (h *Handler) UpdatePriority(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req priorityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.UpdatePriority(c.Request().Context(), id, req.Priority)
	if err != nil {
		return mapQueueError(err)
	}
	h.notify(e.ID)
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) RemoveFromQueue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.Remove(c.Request().Context(), id)
	if err != nil {
		return mapQueueError(err)
	}
	h.notify(id)
	return c.JSON(http.StatusOK, e)
}
