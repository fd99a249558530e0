package chat

import (
	"context"

	"github.com/classio/classio/core/user"
)

// Backend is the data service the chat core is a client of. Implementations
// live in services/chatapi (HTTP + websocket) and storage/dummy (in-memory).
//
// Subscribe* methods open an independent push channel each time they are
// called; channels are never shared between consumers. A returned channel is
// closed when ctx is canceled or when the underlying stream fails. Stream
// failures are not reported to the consumer, which simply retains its last
// known state.
type Backend interface {
	// Conversations returns the user's full conversation list, direct and group.
	Conversations(ctx context.Context) ([]Conversation, error)
	SubscribeConversations(ctx context.Context) (<-chan []Conversation, error)

	// DirectMessages and GroupMessages return up to limit messages
	// newest-first, strictly older than beforeID when it is non-empty.
	DirectMessages(ctx context.Context, conversationID, beforeID string, limit int) ([]Message, error)
	GroupMessages(ctx context.Context, groupID, beforeID string, limit int) ([]Message, error)
	// SubscribeMessages delivers every incoming message unfiltered;
	// consumers select their own with Message.Matches.
	SubscribeMessages(ctx context.Context) (<-chan Message, error)

	SendDirectMessage(ctx context.Context, conversationID, content string) error
	SendGroupMessage(ctx context.Context, groupID, content string) error

	MarkDirectMessagesRead(ctx context.Context, conversationID string) error
	MarkGroupMessagesRead(ctx context.Context, groupID string) error

	TotalUnreadCount(ctx context.Context) (int, error)
	SubscribeUnreadCount(ctx context.Context) (<-chan int, error)

	// AvailableRecipients returns the server-side base set of contactable
	// users; role-hierarchy filtering happens client-side on top of it.
	AvailableRecipients(ctx context.Context) ([]user.User, error)
	SearchUsers(ctx context.Context, query string) ([]user.User, error)

	CreateGroup(ctx context.Context, name string, memberIDs []string) (Group, error)
	UserGroups(ctx context.Context) ([]Group, error)
	Group(ctx context.Context, groupID string) (*Group, error)
}
