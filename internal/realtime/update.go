package realtime

import "strings"

const topicPrefix = "conversation/"

const targetPrefix = "user/"

// Update is a single fan-out record: a topic, a JSON body and, for private
// updates, the list of targets allowed to receive it. The ID is assigned by
// the publisher and doubles as the SSE event id, which lets consumers drop
// replayed events.
type Update struct {
	ID      string   `json:"id"`
	Topic   string   `json:"topic"`
	Data    string   `json:"data"`
	Private bool     `json:"private"`
	Targets []string `json:"targets,omitempty"`
}

// ConversationTopic returns the pub/sub topic for a conversation.
func ConversationTopic(conversationID string) string {
	return topicPrefix + conversationID
}

// UserTarget returns the target string identifying a user as a recipient of
// private updates.
func UserTarget(userID string) string {
	return targetPrefix + userID
}

// ParseUserTarget extracts the user ID from a target string.
func ParseUserTarget(target string) (string, bool) {
	return strings.CutPrefix(target, targetPrefix)
}
