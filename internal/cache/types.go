package cache

// LoginSession marks a session id as issued by GET /session. The bot side
// checks the marker before relaying credentials for that id.
type LoginSession struct {
	SessionID string `json:"session_id"`
	CreatedAt int64  `json:"created_at"`
}
