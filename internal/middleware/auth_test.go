package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"nexus-chat/internal/auth"
)

func setupRouter(mgr *auth.SessionManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", AuthRequired(mgr), func(c *gin.Context) {
		c.String(http.StatusOK, "user %d", c.GetInt("userID"))
	})
	return r
}

func TestAuthRequiredRedirectsWithoutSession(t *testing.T) {
	router := setupRouter(auth.NewSessionManager("test-secret", 3600))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestAuthRequiredPassesIdentity(t *testing.T) {
	mgr := auth.NewSessionManager("test-secret", 3600)
	router := setupRouter(mgr)

	loginRec := httptest.NewRecorder()
	loginReq := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, mgr.Establish(loginRec, loginReq, 7, "alice"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range loginRec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user 7", rec.Body.String())
}
