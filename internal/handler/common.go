package handler

import (
	"errors"
	"net/http"

	"backend/internal/workflow"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// actorFromContext reads the authenticated user placed on the context by the
// auth middleware.
func actorFromContext(c *gin.Context) workflow.Actor {
	return workflow.Actor{
		UserID:    c.GetString("userID"),
		Role:      workflow.Role(c.GetString("userRole")),
		Specialty: c.GetString("userSpecialty"),
	}
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
	case errors.Is(err, workflow.ErrValidation):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, workflow.ErrInvalidOtp):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, workflow.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, workflow.ErrConflict):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.Is(err, workflow.ErrExternalService):
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

func pageParams(c *gin.Context) (int, int) {
	p := pagination.Parse(c)
	return p.Page, p.Limit
}

// officerRoleStrings is the RequireRole argument list covering every officer
// role in the approval chain.
func officerRoleStrings() []string {
	out := make([]string, 0, len(workflow.OfficerRoles))
	for _, r := range workflow.OfficerRoles {
		out = append(out, string(r))
	}
	return out
}

// allRoleStrings covers every authenticated user including applicants and
// admins.
func allRoleStrings() []string {
	out := officerRoleStrings()
	return append(out, string(workflow.RoleApplicant), string(workflow.RoleAdmin))
}
