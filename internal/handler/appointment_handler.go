package handler

import (
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	apptService service.AppointmentService
}

func NewAppointmentHandler(apptService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{apptService: apptService}
}

func (h *AppointmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	je := middleware.RequireRole(string(workflow.RoleJuniorEngineer))
	anyUser := middleware.RequireRole(allRoleStrings()...)

	apps := router.Group("/applications")
	{
		apps.POST("/:id/appointment", je, h.Schedule)
		apps.PUT("/:id/appointment", je, h.Reschedule)
		apps.GET("/:id/appointment", anyUser, h.GetActive)
	}
}

// Schedule handles POST /applications/:id/appointment
// @Summary      Schedule appointment
// @Description  Junior engineer books the document review meeting; the record moves to the appointment stage.
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Application ID"
// @Param        payload  body      service.ScheduleRequest  true  "Appointment details"
// @Success      201      {object}  response.Response{data=service.AppointmentResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /applications/{id}/appointment [post]
func (h *AppointmentHandler) Schedule(c *gin.Context) {
	var req service.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	appt, err := h.apptService.Schedule(c.Request.Context(), c.Param("id"), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, appt))
}

// Reschedule handles PUT /applications/:id/appointment
// @Summary      Reschedule appointment
// @Description  Moves the active appointment to a new date with a mandatory reason; the previous date goes into history and the applicant is re-notified.
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Application ID"
// @Param        payload  body      service.RescheduleRequest  true  "Reschedule details"
// @Success      200      {object}  response.Response{data=service.AppointmentResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /applications/{id}/appointment [put]
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	var req service.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	appt, err := h.apptService.Reschedule(c.Request.Context(), c.Param("id"), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, appt))
}

// GetActive handles GET /applications/:id/appointment
// @Summary      Get active appointment
// @Description  Fetches the currently active appointment with its reschedule history
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=service.AppointmentResponse}
// @Failure      404  {object}  response.Response
// @Router       /applications/{id}/appointment [get]
func (h *AppointmentHandler) GetActive(c *gin.Context) {
	appt, err := h.apptService.GetActive(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, appt))
}
