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

// ConversationDocument represents the MongoDB document structure for
// conversations. Unread counts are keyed by participant UUID string.
type ConversationDocument struct {
	ID            string         `bson:"_id"`
	PairKey       string         `bson:"pairKey"`
	Participants  []string       `bson:"participants"`
	LastMessageID string         `bson:"lastMessageId,omitempty"`
	LastMessageAt time.Time      `bson:"lastMessageAt"`
	UnreadCount   map[string]int `bson:"unreadCount"`
	CreatedAt     time.Time      `bson:"createdAt"`
}

func conversationFromDocument(doc *ConversationDocument) *models.Conversation {
	id, _ := uuid.Parse(doc.ID)
	conv := &models.Conversation{
		ID:            id,
		PairKey:       doc.PairKey,
		LastMessageAt: doc.LastMessageAt,
		UnreadCount:   make(map[uuid.UUID]int, len(doc.UnreadCount)),
		CreatedAt:     doc.CreatedAt,
	}
	for i, p := range doc.Participants {
		if i > 1 {
			break
		}
		pid, _ := uuid.Parse(p)
		conv.Participants[i] = pid
	}
	if doc.LastMessageID != "" {
		lastID, err := uuid.Parse(doc.LastMessageID)
		if err == nil {
			conv.LastMessageID = &lastID
		}
	}
	for key, count := range doc.UnreadCount {
		pid, err := uuid.Parse(key)
		if err == nil {
			conv.UnreadCount[pid] = count
		}
	}
	return conv
}

// SaveConversation upserts the conversation record, counters included.
func (m *MongoDB) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	doc := ConversationDocument{
		ID:            conv.ID.String(),
		PairKey:       conv.PairKey,
		Participants:  []string{conv.Participants[0].String(), conv.Participants[1].String()},
		LastMessageAt: conv.LastMessageAt,
		UnreadCount:   make(map[string]int, len(conv.UnreadCount)),
		CreatedAt:     conv.CreatedAt,
	}
	if conv.LastMessageID != nil {
		doc.LastMessageID = conv.LastMessageID.String()
	}
	for pid, count := range conv.UnreadCount {
		doc.UnreadCount[pid.String()] = count
	}

	opts := options.Replace().SetUpsert(true)
	_, err := m.Conversations.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %v", err)
	}
	return nil
}

// GetConversationByPairKey retrieves a conversation by its canonical key.
func (m *MongoDB) GetConversationByPairKey(ctx context.Context, pairKey string) (*models.Conversation, error) {
	var doc ConversationDocument
	err := m.Conversations.FindOne(ctx, bson.M{"pairKey": pairKey}).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %v", err)
	}
	return conversationFromDocument(&doc), nil
}

// GetConversationsForUser returns all conversations containing the user,
// most recently active first.
func (m *MongoDB) GetConversationsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}})
	cursor, err := m.Conversations.Find(ctx, bson.M{"participants": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %v", err)
	}
	defer cursor.Close(ctx)

	var conversations []*models.Conversation
	for cursor.Next(ctx) {
		var doc ConversationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %v", err)
		}
		conversations = append(conversations, conversationFromDocument(&doc))
	}
	return conversations, nil
}
