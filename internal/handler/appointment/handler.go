package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-scheduler/internal/handler"
	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	appointmentService "github.com/jwalitptl/clinic-scheduler/internal/service/appointment"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

type Handler struct {
	service appointmentService.AppointmentServicer
}

func NewHandler(service appointmentService.AppointmentServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/clinics/:id/appointment-options", h.Options)

	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
	}
}

type optionsQuery struct {
	Weekday string `form:"weekday" binding:"omitempty,weekday"`
	Date    string `form:"date" binding:"omitempty,datekey"`
}

type listQuery struct {
	ClinicID string                  `form:"clinic_id" binding:"omitempty,uuid"`
	DoctorID string                  `form:"doctor_id" binding:"omitempty,uuid"`
	Status   model.AppointmentStatus `form:"status" binding:"omitempty,oneof=scheduled confirmed cancelled completed"`
	From     string                  `form:"from" binding:"omitempty,datekey"`
	To       string                  `form:"to" binding:"omitempty,datekey"`
	model.Pagination
}

// Options answers the booking form: the next bookable date for weekday, or
// the given date, with its candidate times.
func (h *Handler) Options(c *gin.Context) {
	clinicID, ok := handler.ParamID(c, "id", "clinic")
	if !ok {
		return
	}
	var q optionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	var (
		day  scheduling.Weekday
		date *scheduling.Date
		err  error
	)
	if q.Date != "" {
		d, err := scheduling.ParseDateKey(q.Date)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		date = &d
	} else if day, err = scheduling.ParseWeekday(q.Weekday); err != nil {
		handler.RespondError(c, err)
		return
	}

	options, err := h.service.Options(c.Request.Context(), clinicID, day, date)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(options))
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	apt, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	filters := &model.AppointmentFilters{Status: q.Status, Pagination: q.Pagination}
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

	apts, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apts))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}
	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	apt, err := h.service.UpdateAppointment(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}
	var req model.CancelAppointmentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			handler.RespondBindError(c, err)
			return
		}
	}

	apt, err := h.service.CancelAppointment(c.Request.Context(), id, req.Reason)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}
