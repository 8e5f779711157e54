package handlers

import (
	"net/http"

	"github.com/gabzin/SerialBoxBot/internal/container"
	"github.com/gin-gonic/gin"
)

func PingHandler(c *container.AppContainer) gin.HandlerFunc {
	return func(g *gin.Context) {
		res := map[string]any{
			"ping": "pong",
		}
		g.JSON(http.StatusOK, res)
	}
}
