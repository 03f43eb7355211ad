package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nexus-chat/internal/mocks"
	"nexus-chat/internal/models"
	"nexus-chat/internal/repositories"
	"nexus-chat/internal/service"
	"nexus-chat/internal/view"
)

func testRenderer(t *testing.T) *view.Renderer {
	t.Helper()
	renderer, err := view.NewRenderer()
	require.NoError(t, err)
	return renderer
}

func setupGroupRouter(handler *GroupHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Set("username", "alice")
		c.Next()
	})
	r.POST("/create_group", handler.CreateGroup)
	r.POST("/join_group", handler.JoinGroup)
	r.GET("/groups", handler.ListGroups)
	r.GET("/group/:group_id", handler.GroupChat)
	r.POST("/group/:group_id", handler.GroupChat)
	return r
}

func newGroupHandler(t *testing.T, groupRepo *mocks.GroupRepositoryMock, messageRepo *mocks.MessageRepositoryMock) *GroupHandler {
	t.Helper()
	svc := service.NewMessageService(messageRepo, new(mocks.UserRepositoryMock), groupRepo, new(mocks.UploaderMock))
	return NewGroupHandler(groupRepo, messageRepo, svc, testSessions(), testRenderer(t), nil, 16<<20)
}

func TestCreateGroupSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	groupRepo.On("CreateGroup", mock.Anything, 1, "team").Return(models.Group{ID: 5, Name: "team", OwnerID: 1}, nil).Once()
	router := setupGroupRouter(newGroupHandler(t, groupRepo, new(mocks.MessageRepositoryMock)))

	rec := postForm(router, "/create_group", url.Values{"group_name": {"team"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	groupRepo.AssertExpectations(t)
}

func TestCreateGroupDuplicateName(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	groupRepo.On("CreateGroup", mock.Anything, 1, "team").Return(models.Group{}, repositories.ErrGroupNameTaken).Once()
	router := setupGroupRouter(newGroupHandler(t, groupRepo, new(mocks.MessageRepositoryMock)))

	rec := postForm(router, "/create_group", url.Values{"group_name": {"team"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestCreateGroupEmptyName(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(t, groupRepo, new(mocks.MessageRepositoryMock)))

	rec := postForm(router, "/create_group", url.Values{"group_name": {"  "}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	groupRepo.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinGroupSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	groupRepo.On("GetGroupByName", mock.Anything, "team").Return(models.Group{ID: 7, Name: "team"}, nil).Once()
	groupRepo.On("JoinGroup", mock.Anything, 7, 1).Return(nil).Once()
	router := setupGroupRouter(newGroupHandler(t, groupRepo, new(mocks.MessageRepositoryMock)))

	rec := postForm(router, "/join_group", url.Values{"group_name": {"team"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestJoinGroupNotFound(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	groupRepo.On("GetGroupByName", mock.Anything, "ghost").Return(models.Group{}, repositories.ErrGroupNotFound).Once()
	router := setupGroupRouter(newGroupHandler(t, groupRepo, new(mocks.MessageRepositoryMock)))

	rec := postForm(router, "/join_group", url.Values{"group_name": {"ghost"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	groupRepo.AssertNotCalled(t, "JoinGroup", mock.Anything, mock.Anything, mock.Anything)
}

func TestGroupChatNonMemberRedirects(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	groupRepo.On("GetGroup", mock.Anything, 7).Return(models.Group{ID: 7, Name: "team"}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 7, 1).Return(false, nil).Once()
	router := setupGroupRouter(newGroupHandler(t, groupRepo, new(mocks.MessageRepositoryMock)))

	req := httptest.NewRequest(http.MethodGet, "/group/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/groups", rec.Header().Get("Location"))
	groupRepo.AssertExpectations(t)
}

func TestGroupChatUnknownGroup(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	groupRepo.On("GetGroup", mock.Anything, 99).Return(models.Group{}, repositories.ErrGroupNotFound).Once()
	router := setupGroupRouter(newGroupHandler(t, groupRepo, new(mocks.MessageRepositoryMock)))

	req := httptest.NewRequest(http.MethodGet, "/group/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroupChatRendersThread(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo.On("GetGroup", mock.Anything, 7).Return(models.Group{ID: 7, Name: "team"}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 7, 1).Return(true, nil).Once()
	messageRepo.On("ListGroupThread", mock.Anything, 7).Return([]models.MessageView{
		{Message: models.Message{ID: 1, SenderID: 1, Content: "hello team"}, SenderUsername: "alice"},
	}, nil).Once()
	router := setupGroupRouter(newGroupHandler(t, groupRepo, messageRepo))

	req := httptest.NewRequest(http.MethodGet, "/group/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "hello team")
	messageRepo.AssertExpectations(t)
}

func TestGroupChatPostMessage(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	// the handler checks membership, the service re-checks group and membership
	groupRepo.On("GetGroup", mock.Anything, 7).Return(models.Group{ID: 7, Name: "team"}, nil)
	groupRepo.On("IsMember", mock.Anything, 7, 1).Return(true, nil)
	messageRepo.On("CreateGroupMessage", mock.Anything, 1, 7, "hey", "").Return(models.Message{ID: 3, SenderID: 1, Content: "hey"}, nil).Once()
	router := setupGroupRouter(newGroupHandler(t, groupRepo, messageRepo))

	rec := postForm(router, "/group/7", url.Values{"message": {"hey"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/group/7", rec.Header().Get("Location"))
	messageRepo.AssertExpectations(t)
}
