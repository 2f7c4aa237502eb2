package models

import "time"

// MessageEvent is the wire payload fanned out to live subscribers when a
// message is persisted. Field names match what the web client expects.
type MessageEvent struct {
	ID              string                 `json:"id"`
	Content         string                 `json:"content"`
	SenderID        string                 `json:"senderId"`
	SenderName      string                 `json:"senderName"`
	SentAt          string                 `json:"sentAt"`
	ConversationID  string                 `json:"conversationId"`
	ParentMessageID string                 `json:"parentMessageId,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// NewMessageEvent builds the event payload for a persisted message.
func NewMessageEvent(msg *Message, senderName string) MessageEvent {
	event := MessageEvent{
		ID:             msg.ID,
		Content:        msg.Content,
		SenderID:       msg.SenderID,
		SenderName:     senderName,
		SentAt:         msg.SentAt.Format(time.RFC3339Nano),
		ConversationID: msg.ConversationID,
	}
	if msg.ParentMessageID != nil {
		event.ParentMessageID = *msg.ParentMessageID
	}
	if len(msg.Metadata) > 0 {
		event.Metadata = msg.Metadata
	}
	return event
}
