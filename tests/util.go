package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/classio/classio/core/chat"
	"github.com/classio/classio/core/user"
)

// NewUser builds a test user with a derived email.
func NewUser(id, name, role string) user.User {
	return user.User{
		ID:    id,
		Name:  name,
		Email: name + "@test.test",
		Role:  role,
	}
}

// DirectConversation builds a direct conversation with the peer user id as
// its id.
func DirectConversation(peerID, name string, unread bool) chat.Conversation {
	return chat.Conversation{
		ID:           peerID,
		Name:         name,
		Unread:       unread,
		LastActivity: time.Now().UTC(),
	}
}

// GroupConversation builds a group conversation.
func GroupConversation(id, name string, memberIDs ...string) chat.Conversation {
	return chat.Conversation{
		ID:           id,
		IsGroup:      true,
		Name:         name,
		MemberIDs:    memberIDs,
		LastActivity: time.Now().UTC(),
	}
}

// DirectMessage builds a direct message between two users.
func DirectMessage(id, senderID, recipientID, content string) chat.Message {
	return chat.Message{
		ID:          id,
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		SentAt:      time.Now().UTC(),
	}
}

// GroupMessage builds a group message.
func GroupMessage(id, senderID, groupID, content string) chat.Message {
	return chat.Message{
		ID:       id,
		SenderID: senderID,
		GroupID:  groupID,
		Content:  content,
		SentAt:   time.Now().UTC(),
	}
}

// MessagePage builds n messages newest-first with ids "<prefix>1".."<prefix>n"
// (1 is newest).
func MessagePage(n int, prefix, senderID, recipientID string) []chat.Message {
	msgs := make([]chat.Message, 0, n)
	for i := 1; i <= n; i++ {
		msgs = append(msgs, DirectMessage(fmt.Sprintf("%s%d", prefix, i), senderID, recipientID, fmt.Sprintf("msg %d", i)))
	}
	return msgs
}

// WaitSignal waits for one change notification with a timeout.
func WaitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a state change")
	}
}

// Eventually polls cond until it holds or the timeout elapses.
func Eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
