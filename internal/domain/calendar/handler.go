package calendar

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/novadent/clinic-api/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "dentist", "assistant", "receptionist"))
	readGroup.GET("/holidays", h.ListHolidays)
	readGroup.GET("/shifts", h.ListShifts)

	writeGroup := api.Group("", auth.RequireRole("admin", "receptionist"))
	writeGroup.POST("/holidays", h.AddHoliday)
	writeGroup.DELETE("/holidays/:id", h.RemoveHoliday)
	writeGroup.POST("/shifts", h.AddShift)
	writeGroup.DELETE("/shifts/:id", h.RemoveShift)
}

func (h *Handler) AddHoliday(c echo.Context) error {
	var body struct {
		Date string `json:"date"`
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	holiday := Holiday{Date: date, Name: body.Name}
	if err := h.svc.AddHoliday(c.Request().Context(), &holiday); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, holiday)
}

func (h *Handler) RemoveHoliday(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RemoveHoliday(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListHolidays(c echo.Context) error {
	from, err := time.Parse("2006-01-02", c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
	}
	to, err := time.Parse("2006-01-02", c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
	}
	holidays, err := h.svc.ListHolidays(c.Request().Context(), from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if holidays == nil {
		holidays = []*Holiday{}
	}
	return c.JSON(http.StatusOK, holidays)
}

func (h *Handler) AddShift(c echo.Context) error {
	var body struct {
		OwnerCode string `json:"owner_code"`
		OwnerType string `json:"owner_type"`
		Date      string `json:"date"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	start, err := parseClock(body.StartTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_time")
	}
	end, err := parseClock(body.EndTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end_time")
	}

	shift := Shift{
		OwnerCode: body.OwnerCode,
		OwnerType: body.OwnerType,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
	if err := h.svc.AddShift(c.Request().Context(), &shift); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, shift)
}

func (h *Handler) RemoveShift(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RemoveShift(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListShifts(c echo.Context) error {
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	shifts, err := h.svc.ShiftsByDate(c.Request().Context(), date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if shifts == nil {
		shifts = []*Shift{}
	}
	return c.JSON(http.StatusOK, shifts)
}

func parseClock(s string) (time.Time, error) {
	if len(s) == 5 {
		return time.Parse("15:04", s)
	}
	return time.Parse("15:04:05", s)
}
