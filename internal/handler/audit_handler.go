package handler

import (
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs", middleware.RequireRole(string(workflow.RoleAdmin)), h.ListAuditLogs)

	officerOrAdmin := append(officerRoleStrings(), string(workflow.RoleAdmin))
	router.GET("/applications/:id/history", middleware.RequireRole(officerOrAdmin...), h.ApplicationHistory)
}

// ListAuditLogs handles GET /audit-logs
// @Summary      List audit logs
// @Description  Retrieves a paginated list of audit log entries, newest first
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 10)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	page, limit := pageParams(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch audit logs"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	}))
}

// ApplicationHistory handles GET /applications/:id/history
// @Summary      Application action history
// @Description  Returns the full audit trail of one application, oldest first
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=[]service.AuditLogResponse}
// @Failure      500  {object}  response.Response
// @Router       /applications/{id}/history [get]
func (h *AuditHandler) ApplicationHistory(c *gin.Context) {
	logs, err := h.auditService.GetEntityHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch history"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}
