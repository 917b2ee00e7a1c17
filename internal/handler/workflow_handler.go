package handler

import (
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WorkflowHandler exposes the non-signature officer transitions: document
// verification, clerk approval, and rejection.
type WorkflowHandler struct {
	wfService service.WorkflowService
}

func NewWorkflowHandler(wfService service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{wfService: wfService}
}

func (h *WorkflowHandler) RegisterRoutes(router *gin.RouterGroup) {
	apps := router.Group("/applications")
	{
		apps.POST("/:id/verify-documents", middleware.RequireRole(string(workflow.RoleJuniorEngineer)), h.VerifyDocuments)
		apps.POST("/:id/approve", middleware.RequireRole(string(workflow.RoleClerk)), h.ClerkApprove)
		apps.POST("/:id/reject", middleware.RequireRole(officerRoleStrings()...), h.Reject)
	}
}

// VerifyDocuments handles POST /applications/:id/verify-documents
// @Summary      Verify documents
// @Description  Junior engineer confirms the reviewed documents; the record moves to the assistant engineer queue and the appointment closes.
// @Tags         workflow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=service.ApplicationResponse}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /applications/{id}/verify-documents [post]
func (h *WorkflowHandler) VerifyDocuments(c *gin.Context) {
	app, err := h.wfService.VerifyDocuments(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, app))
}

// ClerkApprove handles POST /applications/:id/approve
// @Summary      Clerk approval
// @Description  Clerk records the registry check; the record moves into the second signature round.
// @Tags         workflow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=service.ApplicationResponse}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /applications/{id}/approve [post]
func (h *WorkflowHandler) ClerkApprove(c *gin.Context) {
	app, err := h.wfService.ClerkApprove(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, app))
}

// Reject handles POST /applications/:id/reject
// @Summary      Reject application
// @Description  Rejects the application from the current officer stage with mandatory comments; the applicant may fix and resubmit.
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Application ID"
// @Param        payload  body      service.RejectRequest  true  "Rejection comments"
// @Success      200      {object}  response.Response{data=service.ApplicationResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /applications/{id}/reject [post]
func (h *WorkflowHandler) Reject(c *gin.Context) {
	var req service.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	app, err := h.wfService.Reject(c.Request.Context(), c.Param("id"), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, app))
}
