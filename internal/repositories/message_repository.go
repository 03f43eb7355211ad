package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"nexus-chat/internal/models"
)

// MessageRepository defines interactions for chat messages. Messages are
// append-only: there is no update or delete path.
type MessageRepository interface {
	CreatePrivateMessage(ctx context.Context, senderID int, receiverID int, content string, mediaURL string) (models.Message, error)
	CreateGroupMessage(ctx context.Context, senderID int, groupID int, content string, mediaURL string) (models.Message, error)
	ListPrivateThread(ctx context.Context, userID int, counterpartID int) ([]models.MessageView, error)
	ListGroupThread(ctx context.Context, groupID int) ([]models.MessageView, error)
	ListReceived(ctx context.Context, userID int) ([]models.MessageView, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreatePrivateMessage stores a message addressed to a single user.
func (r *MessageRepo) CreatePrivateMessage(ctx context.Context, senderID int, receiverID int, content string, mediaURL string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender_id, receiver_id, content, media_url) VALUES ($1, $2, $3, NULLIF($4, '')) RETURNING id, sender_id, receiver_id, group_id, content, media_url, created_at`, senderID, receiverID, content, mediaURL).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.GroupID, &msg.Content, &msg.MediaURL, &msg.CreatedAt)
	return msg, err
}

// CreateGroupMessage stores a message addressed to a group.
func (r *MessageRepo) CreateGroupMessage(ctx context.Context, senderID int, groupID int, content string, mediaURL string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender_id, group_id, content, media_url) VALUES ($1, $2, $3, NULLIF($4, '')) RETURNING id, sender_id, receiver_id, group_id, content, media_url, created_at`, senderID, groupID, content, mediaURL).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.GroupID, &msg.Content, &msg.MediaURL, &msg.CreatedAt)
	return msg, err
}

// ListPrivateThread returns the conversation between two users, oldest first.
// The pair is unordered: both directions are included.
func (r *MessageRepo) ListPrivateThread(ctx context.Context, userID int, counterpartID int) ([]models.MessageView, error) {
	query := `SELECT m.id, m.sender_id, m.receiver_id, m.group_id, m.content, m.media_url, m.created_at, u.username AS sender_username
        FROM messages m INNER JOIN users u ON u.id = m.sender_id
        WHERE (m.sender_id=$1 AND m.receiver_id=$2) OR (m.sender_id=$2 AND m.receiver_id=$1)
        ORDER BY m.created_at ASC, m.id ASC`
	var msgs []models.MessageView
	err := r.db.SelectContext(ctx, &msgs, query, userID, counterpartID)
	return msgs, err
}

// ListGroupThread returns group messages oldest first.
func (r *MessageRepo) ListGroupThread(ctx context.Context, groupID int) ([]models.MessageView, error) {
	query := `SELECT m.id, m.sender_id, m.receiver_id, m.group_id, m.content, m.media_url, m.created_at, u.username AS sender_username
        FROM messages m INNER JOIN users u ON u.id = m.sender_id
        WHERE m.group_id=$1
        ORDER BY m.created_at ASC, m.id ASC`
	var msgs []models.MessageView
	err := r.db.SelectContext(ctx, &msgs, query, groupID)
	return msgs, err
}

// ListReceived returns private messages addressed to the user, newest first.
func (r *MessageRepo) ListReceived(ctx context.Context, userID int) ([]models.MessageView, error) {
	query := `SELECT m.id, m.sender_id, m.receiver_id, m.group_id, m.content, m.media_url, m.created_at, u.username AS sender_username
        FROM messages m INNER JOIN users u ON u.id = m.sender_id
        WHERE m.receiver_id=$1
        ORDER BY m.created_at DESC, m.id DESC`
	var msgs []models.MessageView
	err := r.db.SelectContext(ctx, &msgs, query, userID)
	return msgs, err
}
