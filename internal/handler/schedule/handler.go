package schedule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-scheduler/internal/handler"
	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	scheduleService "github.com/jwalitptl/clinic-scheduler/internal/service/schedule"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

type Handler struct {
	service scheduleService.ScheduleServicer
}

func NewHandler(service scheduleService.ScheduleServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/clinics/:id/shift-availability", h.NextAvailableDate)
	r.GET("/clinics/:id/shift-availability/:date", h.DayAvailability)

	shifts := r.Group("/shifts")
	{
		shifts.POST("", h.CreateShift)
		shifts.GET("", h.ListShifts)
		shifts.GET("/:id", h.GetShift)
		shifts.PUT("/:id", h.UpdateShift)
		shifts.DELETE("/:id", h.DeleteShift)
	}
}

type nextDateQuery struct {
	Weekday string `form:"weekday" binding:"required,weekday"`
}

type dayQuery struct {
	Start string `form:"start" binding:"omitempty,hhmm"`
}

type listQuery struct {
	ClinicID string `form:"clinic_id" binding:"omitempty,uuid"`
	DoctorID string `form:"doctor_id" binding:"omitempty,uuid"`
	From     string `form:"from" binding:"omitempty,datekey"`
	To       string `form:"to" binding:"omitempty,datekey"`
	model.Pagination
}

func (h *Handler) NextAvailableDate(c *gin.Context) {
	clinicID, ok := handler.ParamID(c, "id", "clinic")
	if !ok {
		return
	}
	var q nextDateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	day, err := scheduling.ParseWeekday(q.Weekday)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	next, err := h.service.NextAvailableDate(c.Request.Context(), clinicID, day)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(next))
}

func (h *Handler) DayAvailability(c *gin.Context) {
	clinicID, ok := handler.ParamID(c, "id", "clinic")
	if !ok {
		return
	}
	date, err := scheduling.ParseDateKey(c.Param("date"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var q dayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	availability, err := h.service.DayAvailability(c.Request.Context(), clinicID, date, q.Start)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(availability))
}

func (h *Handler) CreateShift(c *gin.Context) {
	var req model.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	shift, err := h.service.CreateShift(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(shift))
}

func (h *Handler) ListShifts(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	filters := &model.ShiftFilters{Pagination: q.Pagination}
	var err error
	if filters.ClinicID, err = handler.OptionalID(q.ClinicID); err == nil {
		filters.DoctorID, err = handler.OptionalID(q.DoctorID)
	}
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest("invalid ID filter", err))
		return
	}
	if filters.From, err = handler.OptionalDate(q.From); err != nil {
		handler.RespondError(c, err)
		return
	}
	if filters.To, err = handler.OptionalDate(q.To); err != nil {
		handler.RespondError(c, err)
		return
	}

	shifts, err := h.service.ListShifts(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(shifts))
}

func (h *Handler) GetShift(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "shift")
	if !ok {
		return
	}

	shift, err := h.service.GetShift(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(shift))
}

func (h *Handler) UpdateShift(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "shift")
	if !ok {
		return
	}
	var req model.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	shift, err := h.service.UpdateShift(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(shift))
}

func (h *Handler) DeleteShift(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "shift")
	if !ok {
		return
	}

	if err := h.service.DeleteShift(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
