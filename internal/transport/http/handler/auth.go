package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ragchat/internal/app"
	"ragchat/internal/transport/http/middleware"
	"ragchat/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUsernameExists):
			// Conflict is conveyed in-band, not as an HTTP error.
			response.OK(c, gin.H{"success": false, "message": "username already taken"})
		case errors.Is(err, app.ErrInvalidInput):
			response.Detail(c, http.StatusBadRequest, err.Error())
		default:
			response.Detail(c, http.StatusInternalServerError, "register failed")
		}
		return
	}

	response.OK(c, gin.H{
		"success": true,
		"message": "user registered",
		"user_id": strconv.FormatUint(uint64(user.ID), 10),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidCredential), errors.Is(err, app.ErrInvalidInput):
			response.OK(c, gin.H{"success": false, "message": "invalid username or password"})
		case errors.Is(err, app.ErrTimeout):
			response.Detail(c, http.StatusGatewayTimeout, "authentication backend timed out")
		case errors.Is(err, app.ErrDependency):
			response.Detail(c, http.StatusBadGateway, "authentication backend unavailable")
		default:
			response.Detail(c, http.StatusInternalServerError, "login failed")
		}
		return
	}

	response.OK(c, gin.H{
		"success":      true,
		"message":      "login successful",
		"access_token": result.Token,
		"user_id":      strconv.FormatUint(uint64(result.User.ID), 10),
		"username":     result.User.Username,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextTokenKey)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		switch {
		case errors.Is(err, app.ErrTimeout):
			response.Detail(c, http.StatusGatewayTimeout, "authentication backend timed out")
		case errors.Is(err, app.ErrDependency):
			response.Detail(c, http.StatusBadGateway, "authentication backend unavailable")
		default:
			response.Detail(c, http.StatusInternalServerError, "logout failed")
		}
		return
	}
	response.OK(c, gin.H{"success": true, "message": "logged out"})
}
