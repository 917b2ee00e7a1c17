package handler

import (
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CertificateHandler struct {
	certService service.CertificateService
}

func NewCertificateHandler(certService service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certService: certService}
}

func (h *CertificateHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyUser := middleware.RequireRole(allRoleStrings()...)

	router.GET("/applications/:id/certificate", anyUser, h.Status)
}

// Status handles GET /applications/:id/certificate
// @Summary      Get certificate
// @Description  Returns the issued certificate for an approved application. 404 while issuance is still pending.
// @Tags         certificates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=service.CertificateResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applications/{id}/certificate [get]
func (h *CertificateHandler) Status(c *gin.Context) {
	cert, err := h.certService.Status(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cert))
}
