package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes plain text from attachments.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

// ValidMessageType reports whether t is one of the supported message types.
func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageText, MessageImage, MessageFile:
		return true
	}
	return false
}

// Message is one entry in a conversation's append-only log. Seq is the
// insertion sequence within the conversation and gives a total order even
// when CreatedAt collides.
type Message struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversationId"`
	SenderID       uuid.UUID   `json:"senderId"`
	ReceiverID     uuid.UUID   `json:"receiverId"`
	Content        string      `json:"content"`
	Type           MessageType `json:"type"`
	IsRead         bool        `json:"isRead"`
	ReadAt         *time.Time  `json:"readAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	Seq            uint64      `json:"seq"`
}
