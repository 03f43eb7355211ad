package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nexus-chat/internal/auth"
)

// AuthRequired resolves the session cookie to a user id and fails closed:
// requests without a logged-in identity are redirected to the login page.
func AuthRequired(sessionMgr *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, username, ok := sessionMgr.CurrentUser(c.Request)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("username", username)
		c.Next()
	}
}
