package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gabzin/SerialBoxBot/internal/api/auth"
	"github.com/gabzin/SerialBoxBot/internal/container"
	"github.com/gin-gonic/gin"
)

// NewSessionHandler issues the opaque session id a browser tab uses to
// wait for a token produced on another device.
func NewSessionHandler(app *container.AppContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := app.AuthService.NewLoginSession(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to create session",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"sessionId": sessionID,
			"streamUrl": "/api/auth/stream/" + sessionID,
			"loginUrl":  fmt.Sprintf("https://t.me/%s?start=login_%s", app.BotUsername, sessionID),
		})
	}
}

// IssueTokenHandler authenticates an identity assertion and returns or
// pushes the access token. Called by the bot (with a session id) and by
// the Mini-App itself (without one).
func IssueTokenHandler(app *container.AppContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			InitData  string `json:"initData" binding:"required"`
			SessionID string `json:"sessionId"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "initData is required",
			})
			return
		}

		result, err := app.AuthService.IssueToken(c.Request.Context(), request.InitData, request.SessionID)
		if err != nil {
			if isVerificationError(err) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"error":   err.Error(),
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "failed to issue token",
			})
			return
		}

		if result.SentViaSSE {
			// The token already left over the stream; do not repeat it here.
			c.JSON(http.StatusOK, gin.H{
				"success":    true,
				"sentViaSSE": true,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"sentViaSSE":  false,
			"accessToken": result.AccessToken,
			"user":        result.User,
		})
	}
}

// VerifyTokenHandler is the plain bearer check the rest of the platform
// reuses; it is unrelated to the handoff protocol itself.
func VerifyTokenHandler(app *container.AppContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"valid": false,
				"error": "missing token",
			})
			return
		}

		tokenString := authHeader
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenString = authHeader[7:]
		}

		claims, err := auth.ValidateAccessToken(tokenString, app.Secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"valid": false,
				"error": "invalid token",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"valid":      true,
			"telegramId": claims.TelegramID,
			"userId":     claims.UserID,
			"expiresAt":  claims.ExpiresAt.Time,
		})
	}
}

func isVerificationError(err error) bool {
	return errors.Is(err, auth.ErrMissingHash) ||
		errors.Is(err, auth.ErrBadSignature) ||
		errors.Is(err, auth.ErrStaleAuth) ||
		errors.Is(err, auth.ErrMissingUser) ||
		errors.Is(err, auth.ErrMalformedUser)
}
