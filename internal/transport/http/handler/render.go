package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragchat/internal/app"
	"ragchat/internal/transport/http/response"
)

// renderServiceError maps service sentinels to HTTP statuses. Dependency
// failures get a generic detail so provider internals never reach clients.
func renderServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Detail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrUnsupportedFile):
		response.Detail(c, http.StatusBadRequest, "unsupported file type: only .md, .txt and .pdf are accepted")
	case errors.Is(err, app.ErrDocumentNotFound):
		response.Detail(c, http.StatusNotFound, "Document not found")
	case errors.Is(err, app.ErrTimeout):
		response.Detail(c, http.StatusGatewayTimeout, "upstream request timed out")
	case errors.Is(err, app.ErrDependency):
		response.Detail(c, http.StatusBadGateway, "upstream dependency failed")
	default:
		response.Detail(c, http.StatusInternalServerError, fallback)
	}
}
