package models

import (
	"database/sql"
	"time"
)

// Chat type discriminators accepted by the message service.
const (
	ChatTypePrivate = "private"
	ChatTypeGroup   = "group"
)

// Message is a single chat message. Exactly one of ReceiverID / GroupID is
// set. Rows are immutable once written.
type Message struct {
	ID         int            `db:"id" json:"id"`
	SenderID   int            `db:"sender_id" json:"sender_id"`
	ReceiverID sql.NullInt64  `db:"receiver_id" json:"receiver_id,omitempty"`
	GroupID    sql.NullInt64  `db:"group_id" json:"group_id,omitempty"`
	Content    string         `db:"content" json:"content"`
	MediaURL   sql.NullString `db:"media_url" json:"media_url,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// MessageView pairs a message with its sender's username for rendering.
type MessageView struct {
	Message
	SenderUsername string `db:"sender_username" json:"sender_username"`
}
