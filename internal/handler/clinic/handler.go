package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-scheduler/internal/handler"
	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	clinicService "github.com/jwalitptl/clinic-scheduler/internal/service/clinic"
)

type Handler struct {
	service clinicService.ClinicServicer
}

func NewHandler(service clinicService.ClinicServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/weekdays", h.ListWeekdays)

	clinics := r.Group("/clinics")
	{
		clinics.GET("", h.ListClinics)
		clinics.GET("/:id", h.GetClinic)
		clinics.GET("/:id/windows", h.ListWindows)
		clinics.POST("/:id/windows", h.AddWindow)
		clinics.DELETE("/:id/windows/:windowId", h.RemoveWindow)
	}
}

// ListWeekdays serves the fixed weekday table the forms render.
func (h *Handler) ListWeekdays(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(scheduling.Weekdays()))
}

func (h *Handler) ListClinics(c *gin.Context) {
	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	clinics, err := h.service.ListClinics(c.Request.Context(), page)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinics))
}

func (h *Handler) GetClinic(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "clinic")
	if !ok {
		return
	}

	clinic, err := h.service.GetClinic(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) ListWindows(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "clinic")
	if !ok {
		return
	}
	if _, err := h.service.GetClinic(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	windows, err := h.service.ListWindows(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(windows))
}

func (h *Handler) AddWindow(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "clinic")
	if !ok {
		return
	}

	var req model.CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	window, err := h.service.AddWindow(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(window))
}

func (h *Handler) RemoveWindow(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "clinic")
	if !ok {
		return
	}
	windowID, ok := handler.ParamID(c, "windowId", "operating window")
	if !ok {
		return
	}

	if err := h.service.RemoveWindow(c.Request.Context(), id, windowID); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
