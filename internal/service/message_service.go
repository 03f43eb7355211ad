package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nexus-chat/internal/blob"
	"nexus-chat/internal/models"
	"nexus-chat/internal/observability"
	"nexus-chat/internal/repositories"
)

var (
	ErrEmptyMessage    = errors.New("message has no content and no media")
	ErrInvalidChatType = errors.New("chat type must be private or group")
	ErrMissingTarget   = errors.New("message target missing")
	ErrTargetNotFound  = errors.New("message target not found")
	ErrNotGroupMember  = errors.New("sender is not a member of the group")
)

// SendInput carries a message submission. A zero ReceiverID/GroupID means
// the field was absent from the request.
type SendInput struct {
	ChatType      string
	ReceiverID    int
	GroupID       int
	Content       string
	MediaData     []byte
	MediaFilename string
}

// MessageService validates submissions, uploads attached media and persists
// exactly one message row per successful send.
type MessageService struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	groups   repositories.GroupRepository
	uploader blob.Uploader
}

// NewMessageService constructs a MessageService.
func NewMessageService(messages repositories.MessageRepository, users repositories.UserRepository, groups repositories.GroupRepository, uploader blob.Uploader) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		groups:   groups,
		uploader: uploader,
	}
}

// Send validates and stores a message. If the media upload fails the message
// is dropped entirely; there is no partial write and no retry.
func (s *MessageService) Send(ctx context.Context, senderID int, in SendInput) (models.Message, error) {
	content := strings.TrimSpace(in.Content)
	hasMedia := len(in.MediaData) > 0

	if content == "" && !hasMedia {
		return models.Message{}, ErrEmptyMessage
	}
	if in.ChatType != models.ChatTypePrivate && in.ChatType != models.ChatTypeGroup {
		return models.Message{}, ErrInvalidChatType
	}

	switch in.ChatType {
	case models.ChatTypePrivate:
		if in.ReceiverID == 0 {
			return models.Message{}, ErrMissingTarget
		}
		if _, err := s.users.GetUser(ctx, in.ReceiverID); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return models.Message{}, ErrTargetNotFound
			}
			return models.Message{}, err
		}
	case models.ChatTypeGroup:
		if in.GroupID == 0 {
			return models.Message{}, ErrMissingTarget
		}
		if _, err := s.groups.GetGroup(ctx, in.GroupID); err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return models.Message{}, ErrTargetNotFound
			}
			return models.Message{}, err
		}
		member, err := s.groups.IsMember(ctx, in.GroupID, senderID)
		if err != nil {
			return models.Message{}, err
		}
		if !member {
			return models.Message{}, ErrNotGroupMember
		}
	}

	var mediaURL string
	if hasMedia {
		url, err := s.uploader.Upload(ctx, in.MediaData, in.MediaFilename, senderID)
		if err != nil {
			observability.IncUploadFailure()
			return models.Message{}, fmt.Errorf("media upload: %w", err)
		}
		mediaURL = url
	}

	var msg models.Message
	var err error
	if in.ChatType == models.ChatTypePrivate {
		msg, err = s.messages.CreatePrivateMessage(ctx, senderID, in.ReceiverID, content, mediaURL)
	} else {
		msg, err = s.messages.CreateGroupMessage(ctx, senderID, in.GroupID, content, mediaURL)
	}
	if err != nil {
		return models.Message{}, err
	}

	observability.IncMessageSent(in.ChatType)
	return msg, nil
}
