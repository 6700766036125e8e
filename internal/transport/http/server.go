package http

import (
	"github.com/gin-gonic/gin"

	"ragchat/internal/bootstrap"
	"ragchat/internal/transport/http/handler"
	"ragchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger), gin.Recovery())

	router.StaticFile("/", "web/index.html")
	router.StaticFile("/app.js", "web/app.js")
	router.StaticFile("/style.css", "web/style.css")

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	authHandler := handler.NewAuthHandler(app.Auth)
	chatHandler := handler.NewChatHandler(app.RAG)
	documentHandler := handler.NewDocumentHandler(app.Documents)

	requireAuth := middleware.BearerAuth(app.Auth)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", requireAuth, authHandler.Logout)

	v1.POST("/chat", chatHandler.Chat)

	docs := v1.Group("/documents")
	docs.Use(requireAuth)
	docs.POST("", documentHandler.Create)
	docs.POST("/file", documentHandler.UploadFile)
	docs.GET("", documentHandler.List)
	docs.GET("/:id", documentHandler.Get)
	docs.DELETE("", documentHandler.Clear)

	return router
}
