package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"nexus-chat/internal/auth"
	"nexus-chat/internal/blob"
	"nexus-chat/internal/observability"
	"nexus-chat/internal/repositories"
	"nexus-chat/internal/service"
	"nexus-chat/internal/telemetry"
	"nexus-chat/internal/view"
)

// GroupHandler serves group creation, joining and the group chat screen.
type GroupHandler struct {
	groupRepo      repositories.GroupRepository
	messageRepo    repositories.MessageRepository
	messageService *service.MessageService
	sessions       *auth.SessionManager
	renderer       *view.Renderer
	audit          *telemetry.AuditEmitter
	maxUploadBytes int64
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groupRepo repositories.GroupRepository, messageRepo repositories.MessageRepository, messageService *service.MessageService, sessions *auth.SessionManager, renderer *view.Renderer, audit *telemetry.AuditEmitter, maxUploadBytes int64) *GroupHandler {
	return &GroupHandler{
		groupRepo:      groupRepo,
		messageRepo:    messageRepo,
		messageService: messageService,
		sessions:       sessions,
		renderer:       renderer,
		audit:          audit,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateGroup handles POST /create_group. The group row and the creator's
// membership are written in one transaction by the repository.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID := c.GetInt("userID")
	name := strings.TrimSpace(c.PostForm("group_name"))

	if name == "" {
		h.sessions.AddFlash(c.Writer, c.Request, "error", "Group name is required.")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if _, err := h.groupRepo.CreateGroup(c.Request.Context(), userID, name); err != nil {
		if errors.Is(err, repositories.ErrGroupNameTaken) {
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Group exists.")
		} else {
			h.emitAudit(c, "ERROR", "group create failed")
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Could not create group.")
		}
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	h.emitAudit(c, "INFO", "group created")
	h.sessions.AddFlash(c.Writer, c.Request, "success", "Group created!")
	c.Redirect(http.StatusSeeOther, "/")
}

// JoinGroup handles POST /join_group. Joining a group the user already
// belongs to is a no-op.
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	userID := c.GetInt("userID")
	name := strings.TrimSpace(c.PostForm("group_name"))

	group, err := h.groupRepo.GetGroupByName(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Group not found.")
		} else {
			h.emitAudit(c, "ERROR", "group lookup failed")
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Could not join group.")
		}
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if err := h.groupRepo.JoinGroup(c.Request.Context(), group.ID, userID); err != nil {
		h.emitAudit(c, "ERROR", "group join failed")
		h.sessions.AddFlash(c.Writer, c.Request, "error", "Could not join group.")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	h.emitAudit(c, "INFO", "group joined")
	h.sessions.AddFlash(c.Writer, c.Request, "success", "Joined group!")
	c.Redirect(http.StatusSeeOther, "/")
}

// ListGroups renders the caller's groups.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID := c.GetInt("userID")

	groups, err := h.groupRepo.ListGroupsForUser(c.Request.Context(), userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "group list failed")
		c.String(http.StatusInternalServerError, "failed to load groups")
		return
	}

	h.renderPage(c, "groups.html", gin.H{"Groups": groups})
}

// GroupChat handles GET and POST /group/:group_id. Non-members are sent back
// to the groups list.
func (h *GroupHandler) GroupChat(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.String(http.StatusNotFound, "group not found")
		return
	}

	userID := c.GetInt("userID")
	group, err := h.groupRepo.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			c.String(http.StatusNotFound, "group not found")
			return
		}
		c.String(http.StatusInternalServerError, "failed to load group")
		return
	}

	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		c.String(http.StatusInternalServerError, "membership check failed")
		return
	}
	if !member {
		c.Redirect(http.StatusSeeOther, "/groups")
		return
	}

	if c.Request.Method == http.MethodPost {
		h.postGroupMessage(c, userID, groupID)
		return
	}

	msgs, err := h.messageRepo.ListGroupThread(c.Request.Context(), groupID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load messages")
		return
	}

	h.renderPage(c, "group_chat.html", gin.H{"Group": group, "Messages": msgs})
}

func (h *GroupHandler) postGroupMessage(c *gin.Context, userID, groupID int) {
	mediaData, mediaFilename, err := readUpload(c, "media", h.maxUploadBytes)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			h.sessions.AddFlash(c.Writer, c.Request, "error", "File too large.")
		} else {
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Could not read uploaded file.")
		}
		c.Redirect(http.StatusSeeOther, groupPath(groupID))
		return
	}

	input := service.SendInput{
		ChatType:      "group",
		GroupID:       groupID,
		Content:       c.PostForm("message"),
		MediaData:     mediaData,
		MediaFilename: mediaFilename,
	}

	if _, err := h.messageService.Send(c.Request.Context(), userID, input); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Cannot send empty message.")
		case errors.Is(err, blob.ErrMissingToken), isUploadStatusError(err):
			h.emitAudit(c, "ERROR", "media upload failed")
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Media upload failed.")
		default:
			h.emitAudit(c, "ERROR", "group message failed")
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Could not send message.")
		}
		c.Redirect(http.StatusSeeOther, groupPath(groupID))
		return
	}

	h.emitAudit(c, "INFO", "group message sent")
	c.Redirect(http.StatusSeeOther, groupPath(groupID))
}

func groupPath(groupID int) string {
	return "/group/" + strconv.Itoa(groupID)
}

func (h *GroupHandler) renderPage(c *gin.Context, name string, data gin.H) {
	data["Notices"] = h.sessions.Flashes(c.Writer, c.Request)
	data["Username"] = c.GetString("username")
	if err := h.renderer.Render(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "render error")
	}
}

func (h *GroupHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), observability.IPFromRequest(c.Request), userIDFromContext(c))
}
