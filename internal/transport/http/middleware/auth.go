package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ragchat/internal/app"
	"ragchat/internal/transport/http/response"
)

const (
	ContextUserKey  = "auth_user"
	ContextTokenKey = "auth_token"
)

// BearerAuth validates the Authorization header against the credential store
// and stores the resolved user plus the raw token on the request context.
func BearerAuth(authService *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Detail(c, http.StatusUnauthorized, "authentication token required")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Detail(c, http.StatusUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		user, err := authService.Validate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, app.ErrTokenExpired):
				response.Detail(c, http.StatusUnauthorized, "token expired")
			case errors.Is(err, app.ErrTimeout):
				response.Detail(c, http.StatusGatewayTimeout, "authentication backend timed out")
			case errors.Is(err, app.ErrDependency):
				response.Detail(c, http.StatusBadGateway, "authentication backend unavailable")
			default:
				response.Detail(c, http.StatusUnauthorized, "invalid or expired token")
			}
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}
