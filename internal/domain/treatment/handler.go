package treatment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/novadent/clinic-api/internal/domain/scheduling"
	"github.com/novadent/clinic-api/internal/platform/auth"
	"github.com/novadent/clinic-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "dentist", "assistant", "receptionist"))
	readGroup.GET("/plans", h.ListPlans)
	readGroup.GET("/plans/:code", h.GetPlan)
	readGroup.GET("/plans/:code/items", h.ListItems)

	writeGroup := api.Group("", auth.RequireRole("admin", "dentist"))
	writeGroup.POST("/plans", h.CreatePlan)
	writeGroup.PATCH("/plans/:code/status", h.TransitionPlan)
	writeGroup.POST("/plans/:code/items", h.AddItem)
	writeGroup.PATCH("/plans/items/:id/status", h.TransitionItem)
}

func (h *Handler) CreatePlan(c echo.Context) error {
	var plan TreatmentPlan
	if err := c.Bind(&plan); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePlan(c.Request().Context(), &plan); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, plan)
}

func (h *Handler) GetPlan(c echo.Context) error {
	plan, err := h.svc.GetPlan(c.Request().Context(), c.Param("code"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) ListPlans(c echo.Context) error {
	patient := c.QueryParam("patient_code")
	if patient == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_code is required")
	}
	pg := pagination.FromContext(c)
	plans, total, err := h.svc.ListPlansByPatient(c.Request().Context(), patient, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(plans, total, pg.Limit, pg.Offset))
}

func (h *Handler) TransitionPlan(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	plan, err := h.svc.TransitionPlan(c.Request().Context(), c.Param("code"), body.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) AddItem(c echo.Context) error {
	var item PlanItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddItem(c.Request().Context(), c.Param("code"), &item); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) ListItems(c echo.Context) error {
	items, err := h.svc.ListItems(c.Request().Context(), c.Param("code"))
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*PlanItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) TransitionItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.TransitionItem(c.Request().Context(), id, body.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, scheduling.ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
