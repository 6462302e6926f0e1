package scheduling

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/novadent/clinic-api/internal/platform/auth"
)

// PlanSource hands the auto-scheduler the plan items awaiting booking and
// applies its decisions back to the plan. Implemented by the treatment
// domain.
type PlanSource interface {
	ItemsToSchedule(ctx context.Context, planCode string) ([]PlanItemView, error)
	ApplyResults(ctx context.Context, planCode string, results []ScheduleResult) error
}

type Handler struct {
	avail     *AvailabilityService
	scheduler *AutoScheduler
	plans     PlanSource

	defaultLookAhead int
}

func NewHandler(avail *AvailabilityService, scheduler *AutoScheduler, plans PlanSource) *Handler {
	return &Handler{avail: avail, scheduler: scheduler, plans: plans}
}

// SetDefaultLookAhead overrides the search horizon used when a schedule
// request does not specify one.
func (h *Handler) SetDefaultLookAhead(days int) {
	h.defaultLookAhead = days
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "dentist", "assistant", "receptionist"))
	g.GET("/availability/doctors", h.AvailableDoctors)
	g.GET("/availability/slots", h.AvailableSlots)
	g.GET("/availability/resources", h.AvailableResources)
	g.POST("/plans/:code/schedule", h.AutoSchedule)
}

// AvailableDoctors handles GET /availability/doctors?date&service_codes.
func (h *Handler) AvailableDoctors(c echo.Context) error {
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	codes := splitCodes(c.QueryParam("service_codes"))

	doctors, err := h.avail.AvailableDoctors(c.Request().Context(), date, codes)
	if err != nil {
		return httpError(err)
	}
	if doctors == nil {
		doctors = []AvailableDoctorDTO{}
	}
	return c.JSON(http.StatusOK, doctors)
}

// AvailableSlots handles GET /availability/slots.
func (h *Handler) AvailableSlots(c echo.Context) error {
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req := AvailableTimesRequest{
		Date:             date,
		EmployeeCode:     c.QueryParam("employee_code"),
		ServiceCodes:     splitCodes(c.QueryParam("service_codes")),
		ParticipantCodes: splitCodes(c.QueryParam("participant_codes")),
	}

	slots, err := h.avail.AvailableSlots(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	dtos := make([]TimeSlotDTO, 0, len(slots))
	for _, s := range slots {
		dtos = append(dtos, s.DTO())
	}
	return c.JSON(http.StatusOK, dtos)
}

// AvailableResources handles GET /availability/resources?date&start&end&service_codes.
func (h *Handler) AvailableResources(c echo.Context) error {
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	start, err := parseClock(date, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	end, err := parseClock(date, c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	out, err := h.avail.AvailableResources(c.Request().Context(), date, start, end, splitCodes(c.QueryParam("service_codes")))
	if err != nil {
		return httpError(err)
	}
	if out.AvailableRooms == nil {
		out.AvailableRooms = []string{}
	}
	if out.AvailableAssistants == nil {
		out.AvailableAssistants = []string{}
	}
	return c.JSON(http.StatusOK, out)
}

// AutoSchedule handles POST /plans/:code/schedule.
func (h *Handler) AutoSchedule(c echo.Context) error {
	planCode := c.Param("code")
	var req AutoScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.LookAheadDays <= 0 {
		req.LookAheadDays = h.defaultLookAhead
	}

	ctx := c.Request().Context()
	items, err := h.plans.ItemsToSchedule(ctx, planCode)
	if err != nil {
		return httpError(err)
	}
	if len(items) == 0 {
		return c.JSON(http.StatusOK, []ScheduleResult{})
	}

	results, err := h.scheduler.Run(ctx, items, req)
	if err != nil {
		return httpError(err)
	}
	if err := h.plans.ApplyResults(ctx, planCode, results); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, results)
}

// httpError maps the package's sentinel errors onto HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrReservationConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseClock(date time.Time, s string) (time.Time, error) {
	layout := "15:04:05"
	if len(s) == 5 {
		layout = "15:04"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, date.Location()), nil
}

func splitCodes(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
