package handlers

import (
	"net/http"

	"github.com/gabzin/SerialBoxBot/internal/container"
	"github.com/gin-gonic/gin"
)

// StreamHandler upgrades the request to the server-push stream for one
// session id. The first frame is the connected event; after that the
// connection only carries keep-alives until the token arrives or the
// session expires. The handler blocks until either side ends the stream.
func StreamHandler(app *container.AppContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")

		exists, err := app.AuthService.LoginSessionExists(c.Request.Context(), sessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering

		broker := app.AuthService.Broker()
		done, err := broker.Register(sessionID, c.Writer)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}

		select {
		case <-c.Request.Context().Done():
			// Client navigated away; drop the channel promptly so the
			// registry does not grow.
			broker.Close(sessionID)
		case <-done:
		}
	}
}
