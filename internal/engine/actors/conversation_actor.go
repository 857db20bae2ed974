package actors

import (
	"log"
	"sort"
	"time"

	stdctx "context"

	"commons-hub/internal/database"
	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for ConversationActor
type (
	GetOrCreateConversationMsg struct {
		UserA uuid.UUID `json:"userA"`
		UserB uuid.UUID `json:"userB"`
	}

	ListConversationsMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	SendMessageMsg struct {
		SenderID   uuid.UUID          `json:"senderId"`
		ReceiverID uuid.UUID          `json:"receiverId"`
		Content    string             `json:"content"`
		Type       models.MessageType `json:"type"`
	}

	GetConversationPageMsg struct {
		ConversationID uuid.UUID `json:"conversationId"`
		AfterSeq       uint64    `json:"afterSeq"`
		PageSize       int       `json:"pageSize"`
	}

	MarkReadFromMsg struct {
		ConversationID uuid.UUID `json:"conversationId"`
		ReaderID       uuid.UUID `json:"readerId"`
		CounterpartID  uuid.UUID `json:"counterpartId"`
	}

	// OpenConversationMsg performs page fetch, mark-read and counter reset
	// as one unit. Because the actor processes one message at a time, a
	// concurrent send cannot land between the mark and the reset.
	OpenConversationMsg struct {
		ConversationID uuid.UUID `json:"conversationId"`
		ReaderID       uuid.UUID `json:"readerId"`
		AfterSeq       uint64    `json:"afterSeq"`
		PageSize       int       `json:"pageSize"`
	}

	RecountUnreadMsg struct {
		ConversationID uuid.UUID `json:"conversationId"`
	}
)

// MessagePage is an ascending slice of a conversation's log plus the cursor
// for the next page.
type MessagePage struct {
	Messages   []*models.Message `json:"messages"`
	NextCursor uint64            `json:"nextCursor"`
	HasMore    bool              `json:"hasMore"`
}

// ConversationView is the result of opening a conversation: the page, the
// refreshed conversation record and how many messages were marked read.
type ConversationView struct {
	Conversation *models.Conversation `json:"conversation"`
	Page         *MessagePage         `json:"page"`
	MarkedRead   int                  `json:"markedRead"`
}

const defaultPageSize = 50

// conversationState bundles a conversation record with its append-only
// message log. seq is the insertion counter backing total message order.
type conversationState struct {
	conv     *models.Conversation
	messages []*models.Message
	seq      uint64
}

// ConversationActor owns every conversation: the pair directory, the message
// logs and the unread counters. Single ownership means all mutations to a
// conversation are serialized through the mailbox.
type ConversationActor struct {
	byID      map[uuid.UUID]*conversationState
	byPairKey map[string]*conversationState
	db        *database.MongoDB
	metrics   *utils.MetricsCollector
}

func NewConversationActor(db *database.MongoDB, metrics *utils.MetricsCollector) actor.Actor {
	return &ConversationActor{
		byID:      make(map[uuid.UUID]*conversationState),
		byPairKey: make(map[string]*conversationState),
		db:        db,
		metrics:   metrics,
	}
}

func (a *ConversationActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *GetOrCreateConversationMsg:
		a.handleGetOrCreate(context, msg)
	case *ListConversationsMsg:
		a.handleList(context, msg)
	case *SendMessageMsg:
		a.handleSend(context, msg)
	case *GetConversationPageMsg:
		a.handlePage(context, msg)
	case *MarkReadFromMsg:
		a.handleMarkReadFrom(context, msg)
	case *OpenConversationMsg:
		a.handleOpen(context, msg)
	case *RecountUnreadMsg:
		a.handleRecount(context, msg)
	case *GetCountsMsg:
		context.Respond(len(a.byID))
	}
}

func (a *ConversationActor) handleGetOrCreate(context actor.Context, msg *GetOrCreateConversationMsg) {
	state, err := a.getOrCreate(msg.UserA, msg.UserB)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(state.conv)
}

// getOrCreate canonicalizes the pair and returns the single conversation for
// it, creating one lazily on first contact.
func (a *ConversationActor) getOrCreate(userA, userB uuid.UUID) (*conversationState, *utils.AppError) {
	if userA == uuid.Nil || userB == uuid.Nil {
		return nil, utils.NewValidationError("both participants are required")
	}
	if userA == userB {
		return nil, utils.NewValidationError("cannot start a conversation with yourself")
	}

	key := models.PairKey(userA, userB)
	if state, exists := a.byPairKey[key]; exists {
		return state, nil
	}

	lo, hi := models.CanonicalPair(userA, userB)
	conv := &models.Conversation{
		ID:           uuid.New(),
		PairKey:      key,
		Participants: [2]uuid.UUID{lo, hi},
		UnreadCount: map[uuid.UUID]int{
			lo: 0,
			hi: 0,
		},
		CreatedAt: time.Now(),
	}

	state := &conversationState{conv: conv}
	a.byID[conv.ID] = state
	a.byPairKey[key] = state

	a.persistConversation(conv)
	log.Printf("Conversation %s created for pair %s", conv.ID, key)
	return state, nil
}

func (a *ConversationActor) handleList(context actor.Context, msg *ListConversationsMsg) {
	var conversations []*models.Conversation
	for _, state := range a.byID {
		if state.conv.HasParticipant(msg.UserID) {
			conversations = append(conversations, state.conv)
		}
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})
	context.Respond(conversations)
}

func (a *ConversationActor) handleSend(context actor.Context, msg *SendMessageMsg) {
	startTime := time.Now()

	if msg.Content == "" {
		context.Respond(utils.NewValidationError("message content is required"))
		return
	}
	msgType := msg.Type
	if msgType == "" {
		msgType = models.MessageText
	}
	if !models.ValidMessageType(msgType) {
		context.Respond(utils.NewValidationError("unsupported message type: " + string(msgType)))
		return
	}

	state, appErr := a.getOrCreate(msg.SenderID, msg.ReceiverID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	// Timestamps never run backwards within a conversation; seq breaks
	// same-instant ties.
	now := time.Now()
	if now.Before(state.conv.LastMessageAt) {
		now = state.conv.LastMessageAt
	}
	state.seq++

	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: state.conv.ID,
		SenderID:       msg.SenderID,
		ReceiverID:     msg.ReceiverID,
		Content:        msg.Content,
		Type:           msgType,
		CreatedAt:      now,
		Seq:            state.seq,
	}

	state.messages = append(state.messages, message)
	state.conv.LastMessageID = &message.ID
	state.conv.LastMessageAt = now
	state.conv.UnreadCount[msg.ReceiverID]++

	a.persistMessage(message)
	a.persistConversation(state.conv)

	a.metrics.AddOperationLatency("send_message", time.Since(startTime))
	context.Respond(message)
}

func (a *ConversationActor) handlePage(context actor.Context, msg *GetConversationPageMsg) {
	state, exists := a.byID[msg.ConversationID]
	if !exists {
		context.Respond(utils.NewConversationNotFoundError(msg.ConversationID.String()))
		return
	}
	context.Respond(a.page(state, msg.AfterSeq, msg.PageSize))
}

// page returns messages with seq > afterSeq in ascending order. The log is
// kept in insertion order, so a slice scan is enough.
func (a *ConversationActor) page(state *conversationState, afterSeq uint64, pageSize int) *MessagePage {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	start := sort.Search(len(state.messages), func(i int) bool {
		return state.messages[i].Seq > afterSeq
	})

	end := start + pageSize
	if end > len(state.messages) {
		end = len(state.messages)
	}

	page := &MessagePage{
		Messages:   make([]*models.Message, end-start),
		NextCursor: afterSeq,
		HasMore:    end < len(state.messages),
	}
	copy(page.Messages, state.messages[start:end])
	if len(page.Messages) > 0 {
		page.NextCursor = page.Messages[len(page.Messages)-1].Seq
	}
	return page
}

func (a *ConversationActor) handleMarkReadFrom(context actor.Context, msg *MarkReadFromMsg) {
	state, exists := a.byID[msg.ConversationID]
	if !exists {
		context.Respond(utils.NewConversationNotFoundError(msg.ConversationID.String()))
		return
	}
	if !state.conv.HasParticipant(msg.ReaderID) {
		context.Respond(utils.NewForbiddenError("not a participant of this conversation"))
		return
	}
	context.Respond(a.markReadFrom(state, msg.ReaderID, msg.CounterpartID))
}

// markReadFrom flips unread messages addressed to reader from counterpart
// and resets the reader's counter to the true remaining unread count.
// Idempotent: with nothing to flip it returns 0 and changes nothing.
func (a *ConversationActor) markReadFrom(state *conversationState, reader, counterpart uuid.UUID) int {
	now := time.Now()
	updated := 0
	for _, message := range state.messages {
		if !message.IsRead && message.ReceiverID == reader && message.SenderID == counterpart {
			message.IsRead = true
			readAt := now
			message.ReadAt = &readAt
			updated++
		}
	}

	// The reset recounts from the log rather than writing a literal zero,
	// so a message appended between the flip and the reset still counts.
	state.conv.UnreadCount[reader] = a.unreadFor(state, reader)

	if updated > 0 {
		a.persistReadState(state.conv, reader, counterpart, now)
	}
	return updated
}

func (a *ConversationActor) handleOpen(context actor.Context, msg *OpenConversationMsg) {
	startTime := time.Now()

	state, exists := a.byID[msg.ConversationID]
	if !exists {
		context.Respond(utils.NewConversationNotFoundError(msg.ConversationID.String()))
		return
	}
	counterpart, ok := state.conv.Counterpart(msg.ReaderID)
	if !ok {
		context.Respond(utils.NewForbiddenError("not a participant of this conversation"))
		return
	}

	page := a.page(state, msg.AfterSeq, msg.PageSize)
	marked := a.markReadFrom(state, msg.ReaderID, counterpart)

	a.metrics.AddOperationLatency("open_conversation", time.Since(startTime))
	context.Respond(&ConversationView{
		Conversation: state.conv,
		Page:         page,
		MarkedRead:   marked,
	})
}

func (a *ConversationActor) handleRecount(context actor.Context, msg *RecountUnreadMsg) {
	state, exists := a.byID[msg.ConversationID]
	if !exists {
		context.Respond(utils.NewConversationNotFoundError(msg.ConversationID.String()))
		return
	}

	counts := make(map[uuid.UUID]int, 2)
	for _, participant := range state.conv.Participants {
		counts[participant] = a.unreadFor(state, participant)
	}
	state.conv.UnreadCount = counts
	a.persistConversation(state.conv)
	context.Respond(counts)
}

// unreadFor recomputes a participant's unread count from the message log,
// the source of truth for read state.
func (a *ConversationActor) unreadFor(state *conversationState, recipient uuid.UUID) int {
	count := 0
	for _, message := range state.messages {
		if !message.IsRead && message.ReceiverID == recipient {
			count++
		}
	}
	return count
}

// Persistence is write-through and best-effort: the actor's state is
// authoritative and a storage hiccup must not fail the operation.

func (a *ConversationActor) persistConversation(conv *models.Conversation) {
	if a.db == nil {
		return
	}
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.SaveConversation(ctx, conv); err != nil {
		log.Printf("Failed to persist conversation %s: %v", conv.ID, err)
	}
}

func (a *ConversationActor) persistMessage(message *models.Message) {
	if a.db == nil {
		return
	}
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.SaveMessage(ctx, message); err != nil {
		log.Printf("Failed to persist message %s: %v", message.ID, err)
	}
}

func (a *ConversationActor) persistReadState(conv *models.Conversation, reader, counterpart uuid.UUID, readAt time.Time) {
	if a.db == nil {
		return
	}
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
	defer cancel()
	if _, err := a.db.MarkMessagesRead(ctx, conv.ID, reader, counterpart, readAt); err != nil {
		log.Printf("Failed to persist read state for conversation %s: %v", conv.ID, err)
	}
	if err := a.db.SaveConversation(ctx, conv); err != nil {
		log.Printf("Failed to persist conversation %s: %v", conv.ID, err)
	}
}
