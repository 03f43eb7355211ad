package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"nexus-chat/internal/auth"
	"nexus-chat/internal/blob"
	"nexus-chat/internal/observability"
	"nexus-chat/internal/service"
	"nexus-chat/internal/telemetry"
)

var errFileTooLarge = errors.New("uploaded file too large")

func isUploadStatusError(err error) bool {
	var statusErr *blob.StatusError
	return errors.As(err, &statusErr)
}

// MessageHandler serves message submission.
type MessageHandler struct {
	messageService *service.MessageService
	sessions       *auth.SessionManager
	audit          *telemetry.AuditEmitter
	maxUploadBytes int64
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messageService *service.MessageService, sessions *auth.SessionManager, audit *telemetry.AuditEmitter, maxUploadBytes int64) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		sessions:       sessions,
		audit:          audit,
		maxUploadBytes: maxUploadBytes,
	}
}

// SendMessage handles POST /send_message. Every outcome ends in a redirect;
// failures leave a flash notice and write nothing.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID := c.GetInt("userID")

	mediaData, mediaFilename, err := readUpload(c, "media", h.maxUploadBytes)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			h.sessions.AddFlash(c.Writer, c.Request, "error", "File too large.")
		} else {
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Could not read uploaded file.")
		}
		redirectBack(c)
		return
	}

	input := service.SendInput{
		ChatType:      c.PostForm("chat_type"),
		ReceiverID:    formInt(c, "receiver_id"),
		GroupID:       formInt(c, "group_id"),
		Content:       c.PostForm("content"),
		MediaData:     mediaData,
		MediaFilename: mediaFilename,
	}

	if _, err := h.messageService.Send(c.Request.Context(), userID, input); err != nil {
		h.flashSendError(c, err)
		redirectBack(c)
		return
	}

	h.emitAudit(c, "INFO", "message sent")
	redirectBack(c)
}

func (h *MessageHandler) flashSendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		h.sessions.AddFlash(c.Writer, c.Request, "error", "Cannot send empty message.")
	case errors.Is(err, service.ErrInvalidChatType):
		h.sessions.AddFlash(c.Writer, c.Request, "error", "Invalid chat type.")
	case errors.Is(err, service.ErrMissingTarget):
		h.sessions.AddFlash(c.Writer, c.Request, "error", "Message target missing.")
	case errors.Is(err, service.ErrTargetNotFound):
		h.sessions.AddFlash(c.Writer, c.Request, "error", "Recipient not found.")
	case errors.Is(err, service.ErrNotGroupMember):
		h.sessions.AddFlash(c.Writer, c.Request, "error", "You are not a member of that group.")
	case errors.Is(err, blob.ErrMissingToken):
		h.emitAudit(c, "ERROR", "upload misconfigured: missing token")
		h.sessions.AddFlash(c.Writer, c.Request, "error", "Media upload failed.")
	case isUploadStatusError(err):
		h.emitAudit(c, "ERROR", "media upload failed")
		h.sessions.AddFlash(c.Writer, c.Request, "error", "Media upload failed.")
	default:
		h.emitAudit(c, "ERROR", "message send failed")
		h.sessions.AddFlash(c.Writer, c.Request, "error", "Could not send message.")
	}
}

func (h *MessageHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), observability.IPFromRequest(c.Request), userIDFromContext(c))
}
