package handler

import (
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	applicant := middleware.RequireRole(string(workflow.RoleApplicant))

	apps := router.Group("/applications")
	{
		apps.POST("/:id/payment/initiate", applicant, h.Initiate)
		apps.POST("/:id/payment/confirm", applicant, h.Confirm)
	}
}

// Initiate handles POST /applications/:id/payment/initiate
// @Summary      Initiate payment
// @Description  Generates the payment challan for an application awaiting payment. Repeated calls return the same challan.
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=service.ChallanResponse}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /applications/{id}/payment/initiate [post]
func (h *PaymentHandler) Initiate(c *gin.Context) {
	challan, err := h.paymentService.InitiatePayment(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, challan))
}

// Confirm handles POST /applications/:id/payment/confirm
// @Summary      Confirm payment
// @Description  Records a successful gateway payment and releases the application to the clerk queue. Idempotent against gateway retries.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Application ID"
// @Param        payload  body      service.ConfirmPaymentRequest  true  "Gateway reference"
// @Success      200      {object}  response.Response{data=service.ApplicationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /applications/{id}/payment/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req service.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	app, err := h.paymentService.ConfirmPayment(c.Request.Context(), c.Param("id"), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, app))
}
