package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ragchat/internal/app"
	"ragchat/internal/transport/http/response"
)

type ChatHandler struct {
	ragService *app.RAGService
}

type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

func NewChatHandler(ragService *app.RAGService) *ChatHandler {
	return &ChatHandler{ragService: ragService}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.ragService.GenerateAnswer(c.Request.Context(), req.Question)
	if err != nil {
		renderServiceError(c, err, "answer generation failed")
		return
	}

	response.OK(c, gin.H{"answer": answer})
}
