package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nexus-chat/internal/auth"
	"nexus-chat/internal/repositories"
	"nexus-chat/internal/view"
)

// PageHandler serves the read-only screens: home, private thread, uploads.
type PageHandler struct {
	userRepo    repositories.UserRepository
	groupRepo   repositories.GroupRepository
	messageRepo repositories.MessageRepository
	sessions    *auth.SessionManager
	renderer    *view.Renderer
}

// NewPageHandler constructs a PageHandler.
func NewPageHandler(userRepo repositories.UserRepository, groupRepo repositories.GroupRepository, messageRepo repositories.MessageRepository, sessions *auth.SessionManager, renderer *view.Renderer) *PageHandler {
	return &PageHandler{
		userRepo:    userRepo,
		groupRepo:   groupRepo,
		messageRepo: messageRepo,
		sessions:    sessions,
		renderer:    renderer,
	}
}

// Home renders the dashboard: the caller's groups, the user directory and
// received messages newest first.
func (h *PageHandler) Home(c *gin.Context) {
	userID := c.GetInt("userID")
	ctx := c.Request.Context()

	groups, err := h.groupRepo.ListGroupsForUser(ctx, userID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load groups")
		return
	}
	users, err := h.userRepo.ListUsers(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load users")
		return
	}
	received, err := h.messageRepo.ListReceived(ctx, userID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load messages")
		return
	}

	h.renderPage(c, "home.html", gin.H{
		"Groups":   groups,
		"Users":    users,
		"Received": received,
	})
}

// PrivateChat renders the thread between the caller and a counterpart,
// oldest first.
func (h *PageHandler) PrivateChat(c *gin.Context) {
	receiverID, err := strconv.Atoi(c.Param("receiver_id"))
	if err != nil {
		c.String(http.StatusNotFound, "user not found")
		return
	}

	userID := c.GetInt("userID")
	ctx := c.Request.Context()

	receiver, err := h.userRepo.GetUser(ctx, receiverID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.String(http.StatusNotFound, "user not found")
			return
		}
		c.String(http.StatusInternalServerError, "failed to load user")
		return
	}

	msgs, err := h.messageRepo.ListPrivateThread(ctx, userID, receiverID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load messages")
		return
	}

	h.renderPage(c, "private_chat.html", gin.H{
		"Receiver": receiver,
		"Messages": msgs,
	})
}

// Uploads always responds not-found: local file serving is disabled and all
// media lives in the external blob store.
func (h *PageHandler) Uploads(c *gin.Context) {
	c.String(http.StatusNotFound, "not found")
}

func (h *PageHandler) renderPage(c *gin.Context, name string, data gin.H) {
	data["Notices"] = h.sessions.Flashes(c.Writer, c.Request)
	data["Username"] = c.GetString("username")
	if err := h.renderer.Render(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "render error")
	}
}
