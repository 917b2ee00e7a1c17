package handler

import (
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	appService service.ApplicationService
}

func NewApplicationHandler(appService service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// RegisterRoutes binds the application lifecycle endpoints
func (h *ApplicationHandler) RegisterRoutes(router *gin.RouterGroup) {
	applicant := middleware.RequireRole(string(workflow.RoleApplicant))
	anyUser := middleware.RequireRole(allRoleStrings()...)
	officers := middleware.RequireRole(officerRoleStrings()...)

	apps := router.Group("/applications")
	{
		apps.POST("", applicant, h.CreateDraft)
		apps.GET("", applicant, h.ListMine)
		apps.GET("/pending", officers, h.ListPending)
		apps.GET("/:id", anyUser, h.Get)
		apps.PUT("/:id", applicant, h.UpdateDraft)
		apps.POST("/:id/submit", applicant, h.Submit)
		apps.POST("/:id/resubmit", applicant, h.Resubmit)
	}
}

// CreateDraft handles POST /applications
// @Summary      Create application draft
// @Description  Creates a new draft license application for the authenticated applicant
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.DraftRequest  true  "Draft Payload"
// @Success      201      {object}  response.Response{data=service.ApplicationResponse}
// @Failure      400      {object}  response.Response
// @Router       /applications [post]
func (h *ApplicationHandler) CreateDraft(c *gin.Context) {
	var req service.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor := actorFromContext(c)
	app, err := h.appService.CreateDraft(c.Request.Context(), actor.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, app))
}

// UpdateDraft handles PUT /applications/:id
// @Summary      Update application draft
// @Description  Updates a draft or rejected application owned by the applicant
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "Application ID"
// @Param        payload  body      service.DraftRequest  true  "Draft Payload"
// @Success      200      {object}  response.Response{data=service.ApplicationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /applications/{id} [put]
func (h *ApplicationHandler) UpdateDraft(c *gin.Context) {
	var req service.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	app, err := h.appService.UpdateDraft(c.Request.Context(), c.Param("id"), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, app))
}

// Submit handles POST /applications/:id/submit
// @Summary      Submit application
// @Description  Submits a draft into the approval chain. Requires the full document set; assigns the application number.
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=service.ApplicationResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /applications/{id}/submit [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	app, err := h.appService.Submit(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, app))
}

// Resubmit handles POST /applications/:id/resubmit
// @Summary      Resubmit application
// @Description  Resubmits a rejected application; the approval chain restarts from the beginning. A completed payment carries over.
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=service.ApplicationResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /applications/{id}/resubmit [post]
func (h *ApplicationHandler) Resubmit(c *gin.Context) {
	app, err := h.appService.Resubmit(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, app))
}

// Get handles GET /applications/:id
// @Summary      Get application
// @Description  Fetches one application with its documents, qualifications, and experiences
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=service.ApplicationResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.appService.Get(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, app))
}

// ListMine handles GET /applications
// @Summary      List own applications
// @Description  Lists the authenticated applicant's applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 10)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /applications [get]
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	page, limit := pageParams(c)
	actor := actorFromContext(c)

	apps, total, err := h.appService.ListMine(c.Request.Context(), actor.UserID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"applications": apps,
		"total":        total,
		"page":         page,
		"limit":        limit,
	}))
}

// ListPending handles GET /applications/pending
// @Summary      List pending applications
// @Description  Lists the applications awaiting action from the authenticated officer's role
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        position_type  query     string  false  "Filter by position type"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 10)"
// @Success      200            {object}  response.Response{data=object}
// @Failure      403            {object}  response.Response
// @Router       /applications/pending [get]
func (h *ApplicationHandler) ListPending(c *gin.Context) {
	page, limit := pageParams(c)
	actor := actorFromContext(c)

	apps, total, err := h.appService.ListPending(c.Request.Context(), actor, c.Query("position_type"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"applications": apps,
		"total":        total,
		"page":         page,
		"limit":        limit,
	}))
}
