package routes

import (
	"github.com/gabzin/SerialBoxBot/internal/api/handlers"
	"github.com/gabzin/SerialBoxBot/internal/container"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, c *container.AppContainer) {
	api := r.Group("/api")
	{
		api.GET("/ping", handlers.PingHandler(c))
	}

	auth := api.Group("/auth")
	{
		auth.GET("/session", handlers.NewSessionHandler(c))
		auth.GET("/stream/:sessionId", handlers.StreamHandler(c))
		auth.POST("/token", handlers.IssueTokenHandler(c))
		auth.GET("/verify", handlers.VerifyTokenHandler(c))
	}
}
