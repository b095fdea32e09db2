package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeySessionID is the Gin context key for the browser session ID.
const ContextKeySessionID = "session_id"

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName string
	// MaxAge in seconds; 0 makes it a browser-session cookie.
	MaxAge int
	Secure bool
}

// Session assigns every browser a random session ID kept in a cookie. Stored
// artifacts are scoped by this ID so one user cannot download another's report.
func Session(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if _, parseErr := uuid.Parse(id); err != nil || parseErr != nil {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, cfg.MaxAge, "/", "", cfg.Secure, true)
		c.Set(ContextKeySessionID, id)
		c.Next()
	}
}

// SessionID returns the session ID assigned by Session, or "".
func SessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}
