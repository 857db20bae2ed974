package database

import (
	"context"
	"fmt"
	"time"

	"commons-hub/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageDocument represents the MongoDB document structure for messages
type MessageDocument struct {
	ID             string     `bson:"_id"`
	ConversationID string     `bson:"conversationId"`
	SenderID       string     `bson:"senderId"`
	ReceiverID     string     `bson:"receiverId"`
	Content        string     `bson:"content"`
	Type           string     `bson:"type"`
	IsRead         bool       `bson:"isRead"`
	ReadAt         *time.Time `bson:"readAt,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt"`
	Seq            int64      `bson:"seq"`
}

func messageFromDocument(doc *MessageDocument) *models.Message {
	id, _ := uuid.Parse(doc.ID)
	convID, _ := uuid.Parse(doc.ConversationID)
	senderID, _ := uuid.Parse(doc.SenderID)
	receiverID, _ := uuid.Parse(doc.ReceiverID)
	return &models.Message{
		ID:             id,
		ConversationID: convID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        doc.Content,
		Type:           models.MessageType(doc.Type),
		IsRead:         doc.IsRead,
		ReadAt:         doc.ReadAt,
		CreatedAt:      doc.CreatedAt,
		Seq:            uint64(doc.Seq),
	}
}

// SaveMessage stores a new message in the append-only log.
func (m *MongoDB) SaveMessage(ctx context.Context, message *models.Message) error {
	doc := MessageDocument{
		ID:             message.ID.String(),
		ConversationID: message.ConversationID.String(),
		SenderID:       message.SenderID.String(),
		ReceiverID:     message.ReceiverID.String(),
		Content:        message.Content,
		Type:           string(message.Type),
		IsRead:         message.IsRead,
		ReadAt:         message.ReadAt,
		CreatedAt:      message.CreatedAt,
		Seq:            int64(message.Seq),
	}

	_, err := m.Messages.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to save message: %v", err)
	}
	return nil
}

// GetMessagesAfter returns up to limit messages of a conversation with
// seq > afterSeq, ascending. The log is fetched in chronological order so
// callers can page forward with the last seq they saw.
func (m *MongoDB) GetMessagesAfter(ctx context.Context, conversationID uuid.UUID, afterSeq uint64, limit int) ([]*models.Message, error) {
	filter := bson.M{
		"conversationId": conversationID.String(),
		"seq":            bson.M{"$gt": int64(afterSeq)},
	}
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := m.Messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	for cursor.Next(ctx) {
		var doc MessageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode message: %v", err)
		}
		messages = append(messages, messageFromDocument(&doc))
	}
	return messages, nil
}

// MarkMessagesRead flips every unread message addressed to reader from
// counterpart in one update. Returns the number of messages updated.
func (m *MongoDB) MarkMessagesRead(ctx context.Context, conversationID, reader, counterpart uuid.UUID, readAt time.Time) (int64, error) {
	filter := bson.M{
		"conversationId": conversationID.String(),
		"receiverId":     reader.String(),
		"senderId":       counterpart.String(),
		"isRead":         false,
	}
	update := bson.M{"$set": bson.M{"isRead": true, "readAt": readAt}}

	result, err := m.Messages.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %v", err)
	}
	return result.ModifiedCount, nil
}
