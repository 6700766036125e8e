package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ragchat/internal/app"
	"ragchat/internal/model"
	"ragchat/internal/transport/http/response"
)

const maxUploadSize = 10 << 20 // 10 MB

type DocumentHandler struct {
	docService *app.DocumentService
}

type CreateDocumentRequest struct {
	Content  string            `json:"content" binding:"required"`
	Metadata map[string]string `json:"metadata"`
}

func NewDocumentHandler(docService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.docService.Add(c.Request.Context(), req.Content, req.Metadata)
	if err != nil {
		renderServiceError(c, err, "upload failed")
		return
	}

	response.OK(c, gin.H{
		"success":         true,
		"message":         result.Message,
		"documents_count": result.DocumentsCount,
	})
}

// UploadFile accepts a multipart form with "file" (.md/.txt/.pdf). Remaining
// form fields are carried as document metadata.
func (h *DocumentHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Detail(c, http.StatusBadRequest, "missing file")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.Detail(c, http.StatusBadRequest, "file too large (max 10MB)")
		return
	}

	metadata := map[string]string{}
	if form, err := c.MultipartForm(); err == nil {
		for key, values := range form.Value {
			if len(values) > 0 && strings.TrimSpace(values[0]) != "" {
				metadata[key] = values[0]
			}
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Detail(c, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer file.Close()

	result, err := h.docService.AddFile(c.Request.Context(), fileHeader.Filename, file, metadata)
	if err != nil {
		renderServiceError(c, err, "upload failed")
		return
	}

	response.OK(c, gin.H{
		"success":         true,
		"message":         result.Message,
		"documents_count": result.DocumentsCount,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docService.List(c.Request.Context())
	if err != nil {
		renderServiceError(c, err, "list documents failed")
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}

	response.OK(c, gin.H{
		"success":     true,
		"message":     fmt.Sprintf("Retrieved %d document(s)", len(docs)),
		"documents":   docs,
		"total_count": len(docs),
	})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.docService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderServiceError(c, err, "get document failed")
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) Clear(c *gin.Context) {
	if err := h.docService.ClearAll(c.Request.Context()); err != nil {
		renderServiceError(c, err, "clear documents failed")
		return
	}
	response.OK(c, gin.H{
		"success": true,
		"message": "Successfully cleared all documents from the vector store",
	})
}
