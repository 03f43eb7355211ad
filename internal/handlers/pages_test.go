package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nexus-chat/internal/mocks"
	"nexus-chat/internal/models"
	"nexus-chat/internal/repositories"
)

func setupPageRouter(handler *PageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Set("username", "alice")
		c.Next()
	})
	r.GET("/", handler.Home)
	r.GET("/private/:receiver_id", handler.PrivateChat)
	r.GET("/uploads/*filepath", handler.Uploads)
	return r
}

func newPageHandler(t *testing.T, users *mocks.UserRepositoryMock, groups *mocks.GroupRepositoryMock, messages *mocks.MessageRepositoryMock) *PageHandler {
	t.Helper()
	return NewPageHandler(users, groups, messages, testSessions(), testRenderer(t))
}

func TestHomeRendersDashboard(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	groups := new(mocks.GroupRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	groups.On("ListGroupsForUser", mock.Anything, 1).Return([]models.Group{{ID: 7, Name: "team"}}, nil).Once()
	users.On("ListUsers", mock.Anything).Return([]models.User{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}, nil).Once()
	messages.On("ListReceived", mock.Anything, 1).Return([]models.MessageView{
		{Message: models.Message{ID: 4, SenderID: 2, Content: "hi"}, SenderUsername: "bob"},
	}, nil).Once()
	router := setupPageRouter(newPageHandler(t, users, groups, messages))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "team")
	require.Contains(t, rec.Body.String(), "bob")
	require.Contains(t, rec.Body.String(), "hi")
	users.AssertExpectations(t)
	groups.AssertExpectations(t)
	messages.AssertExpectations(t)
}

func TestPrivateChatRendersThread(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	users.On("GetUser", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	messages.On("ListPrivateThread", mock.Anything, 1, 2).Return([]models.MessageView{
		{Message: models.Message{ID: 4, SenderID: 2, Content: "hello there"}, SenderUsername: "bob"},
	}, nil).Once()
	router := setupPageRouter(newPageHandler(t, users, new(mocks.GroupRepositoryMock), messages))

	req := httptest.NewRequest(http.MethodGet, "/private/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "hello there")
	messages.AssertExpectations(t)
}

func TestPrivateChatUnknownUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("GetUser", mock.Anything, 99).Return(models.User{}, repositories.ErrUserNotFound).Once()
	router := setupPageRouter(newPageHandler(t, users, new(mocks.GroupRepositoryMock), new(mocks.MessageRepositoryMock)))

	req := httptest.NewRequest(http.MethodGet, "/private/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadsAlwaysNotFound(t *testing.T) {
	router := setupPageRouter(newPageHandler(t, new(mocks.UserRepositoryMock), new(mocks.GroupRepositoryMock), new(mocks.MessageRepositoryMock)))

	req := httptest.NewRequest(http.MethodGet, "/uploads/anything/at/all.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
