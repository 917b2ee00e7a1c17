package handler

import (
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/response"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxUploadSize caps applicant document uploads at 10 MiB.
const maxUploadSize = 10 << 20

type DocumentHandler struct {
	docService service.DocumentService
}

func NewDocumentHandler(docService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	applicant := middleware.RequireRole(string(workflow.RoleApplicant))
	anyUser := middleware.RequireRole(allRoleStrings()...)

	apps := router.Group("/applications")
	{
		apps.POST("/:id/documents", applicant, h.Upload)
		apps.GET("/:id/documents", anyUser, h.List)
	}
	router.GET("/documents/:id/download", anyUser, h.Download)
}

// Upload handles POST /applications/:id/documents
// @Summary      Upload document
// @Description  Attaches one typed document to a draft or rejected application, replacing any earlier upload of the same type.
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true  "Application ID"
// @Param        doc_type  formData  string  true  "Document type"
// @Param        file      formData  file    true  "Document file"
// @Success      201       {object}  response.Response{data=model.Document}
// @Failure      400       {object}  response.Response
// @Failure      409       {object}  response.Response
// @Router       /applications/{id}/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	docType := c.PostForm("doc_type")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file: "+err.Error()))
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "File exceeds the 10MB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to open file"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read file"))
		return
	}

	doc, err := h.docService.Upload(c.Request.Context(), c.Param("id"), actorFromContext(c), docType, fileHeader.Filename, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// List handles GET /applications/:id/documents
// @Summary      List documents
// @Description  Lists the documents attached to an application, uploaded and generated alike
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=[]model.Document}
// @Failure      403  {object}  response.Response
// @Router       /applications/{id}/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docService.List(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, docs))
}

// Download handles GET /documents/:id/download
// @Summary      Download document
// @Description  Streams the stored content of one document
// @Tags         documents
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {file}    binary  "Document content"
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	doc, content, err := h.docService.Download(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", content)
}
