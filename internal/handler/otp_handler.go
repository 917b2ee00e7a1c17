package handler

import (
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

// signingRoles are the officer roles that sign documents via OTP.
var signingRoles = []string{
	string(workflow.RoleAssistantEngineer),
	string(workflow.RoleExecutiveEngineer),
	string(workflow.RoleCityEngineer),
}

type OtpHandler struct {
	otpService service.OtpService
}

func NewOtpHandler(otpService service.OtpService) *OtpHandler {
	return &OtpHandler{otpService: otpService}
}

func (h *OtpHandler) RegisterRoutes(router *gin.RouterGroup) {
	signers := middleware.RequireRole(signingRoles...)

	apps := router.Group("/applications")
	{
		apps.POST("/:id/otp", signers, h.Generate)
		apps.POST("/:id/sign", signers, h.VerifyAndSign)
	}
}

// Generate handles POST /applications/:id/otp
// @Summary      Generate signing OTP
// @Description  Issues a fresh one-time signing code for the acting officer. Any previous open code for the same role is invalidated.
// @Tags         signatures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true   "Application ID"
// @Param        payload  body      service.GenerateOtpRequest  false  "Optional comments"
// @Success      201      {object}  response.Response{data=service.OtpSessionResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /applications/{id}/otp [post]
func (h *OtpHandler) Generate(c *gin.Context) {
	var req service.GenerateOtpRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
			return
		}
	}

	session, err := h.otpService.Generate(c.Request.Context(), c.Param("id"), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, session))
}

// VerifyAndSign handles POST /applications/:id/sign
// @Summary      Verify OTP and sign
// @Description  Verifies the one-time code, records the officer's signature on the target document, and advances the workflow. A wrong code burns one of three attempts.
// @Tags         signatures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Application ID"
// @Param        payload  body      service.VerifySignRequest  true  "OTP code and optional comments"
// @Success      200      {object}  response.Response{data=service.ApplicationResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /applications/{id}/sign [post]
func (h *OtpHandler) VerifyAndSign(c *gin.Context) {
	var req service.VerifySignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	app, err := h.otpService.VerifyAndSign(c.Request.Context(), c.Param("id"), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, app))
}
