package chat

import "time"

// Conversation is a direct (1:1) or group chat thread as reported by the
// backend. The core never builds one itself; it only caches what fetches and
// push updates deliver. IsGroup is fixed at creation and selects which
// backend operation variants apply.
type Conversation struct {
	ID           string    `json:"id"`
	IsGroup      bool      `json:"is_group"`
	Name         string    `json:"name"`
	MemberIDs    []string  `json:"member_ids,omitempty"`
	LastMessage  string    `json:"last_message,omitempty"`
	LastActivity time.Time `json:"last_activity"`
	Unread       bool      `json:"unread"`
}

// Message is a single chat message. RecipientID is set for direct messages,
// GroupID for group messages.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id,omitempty"`
	GroupID     string    `json:"group_id,omitempty"`
	Content     string    `json:"content"`
	SentAt      time.Time `json:"sent_at"`
	Read        bool      `json:"read"`
}

// Matches reports whether the message belongs to the given conversation.
// For a direct conversation the id names the peer user, so either endpoint
// of the message must equal it; for a group it is the group id.
func (m Message) Matches(conversationID string, isGroup bool) bool {
	if isGroup {
		return m.GroupID == conversationID
	}
	return m.SenderID == conversationID || m.RecipientID == conversationID
}

// Group is a named group conversation with its member list.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter selects a view over the conversation list.
type Filter int

const (
	FilterAll Filter = iota
	FilterDirect
	FilterGroups
)

func (f Filter) String() string {
	switch f {
	case FilterDirect:
		return "direct"
	case FilterGroups:
		return "groups"
	default:
		return "all"
	}
}
