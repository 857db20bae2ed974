package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation is the canonical record of a two-party messaging
// relationship. The participant pair is stored in canonical order so that
// {A,B} and {B,A} always resolve to the same record.
type Conversation struct {
	ID            uuid.UUID         `json:"id"`
	PairKey       string            `json:"-"`
	Participants  [2]uuid.UUID      `json:"participants"`
	LastMessageID *uuid.UUID        `json:"lastMessageId,omitempty"`
	LastMessageAt time.Time         `json:"lastMessageAt"`
	UnreadCount   map[uuid.UUID]int `json:"unreadCount"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// CanonicalPair orders an unordered pair of user IDs deterministically,
// independent of call order.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) > 0 {
		return b, a
	}
	return a, b
}

// PairKey derives the lookup key for the conversation between two users.
// PairKey(a, b) == PairKey(b, a) for all a, b.
func PairKey(a, b uuid.UUID) string {
	lo, hi := CanonicalPair(a, b)
	return lo.String() + ":" + hi.String()
}

// Counterpart returns the other participant of the conversation.
func (c *Conversation) Counterpart(user uuid.UUID) (uuid.UUID, bool) {
	switch user {
	case c.Participants[0]:
		return c.Participants[1], true
	case c.Participants[1]:
		return c.Participants[0], true
	}
	return uuid.Nil, false
}

// HasParticipant reports whether the user is part of the conversation.
func (c *Conversation) HasParticipant(user uuid.UUID) bool {
	return user == c.Participants[0] || user == c.Participants[1]
}
