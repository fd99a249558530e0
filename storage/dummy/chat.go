package dummychat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/classio/classio/core"
	"github.com/classio/classio/core/chat"
	"github.com/classio/classio/core/user"
)

func (b *Backend) Conversations(context.Context) ([]chat.Conversation, error) {
	if err := b.beginOp(OpConversations); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]chat.Conversation, len(b.conversations))
	copy(out, b.conversations)
	return out, nil
}

func (b *Backend) SubscribeConversations(ctx context.Context) (<-chan []chat.Conversation, error) {
	if err := b.beginOp(OpSubscribe); err != nil {
		return nil, err
	}
	return subscribe(ctx, b, b.convSubs), nil
}

func (b *Backend) DirectMessages(_ context.Context, conversationID, beforeID string, limit int) ([]chat.Message, error) {
	return b.page(chat.ThreadKey{ConversationID: conversationID}, beforeID, limit)
}

func (b *Backend) GroupMessages(_ context.Context, groupID, beforeID string, limit int) ([]chat.Message, error) {
	return b.page(chat.ThreadKey{ConversationID: groupID, IsGroup: true}, beforeID, limit)
}

func (b *Backend) page(key chat.ThreadKey, beforeID string, limit int) ([]chat.Message, error) {
	if err := b.beginOp(OpMessages); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	msgs := b.messages[key]
	start := 0
	if beforeID != "" {
		for i, m := range msgs {
			if m.ID == beforeID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(msgs) {
		end = len(msgs)
	}
	out := make([]chat.Message, end-start)
	copy(out, msgs[start:end])
	return out, nil
}

func (b *Backend) SubscribeMessages(ctx context.Context) (<-chan chat.Message, error) {
	if err := b.beginOp(OpSubscribe); err != nil {
		return nil, err
	}
	return subscribe(ctx, b, b.msgSubs), nil
}

func (b *Backend) SendDirectMessage(_ context.Context, conversationID, content string) error {
	return b.send(chat.Message{RecipientID: conversationID, Content: content})
}

func (b *Backend) SendGroupMessage(_ context.Context, groupID, content string) error {
	return b.send(chat.Message{GroupID: groupID, Content: content})
}

func (b *Backend) send(msg chat.Message) error {
	if err := b.beginOp(OpSend); err != nil {
		return err
	}
	msg.ID = uuid.NewString()
	msg.SentAt = time.Now().UTC()
	b.mu.Lock()
	b.sent = append(b.sent, msg)
	b.mu.Unlock()
	return nil
}

func (b *Backend) MarkDirectMessagesRead(_ context.Context, conversationID string) error {
	return b.markRead(chat.ThreadKey{ConversationID: conversationID})
}

func (b *Backend) MarkGroupMessagesRead(_ context.Context, groupID string) error {
	return b.markRead(chat.ThreadKey{ConversationID: groupID, IsGroup: true})
}

func (b *Backend) markRead(key chat.ThreadKey) error {
	if err := b.beginOp(OpMarkRead); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readMarks = append(b.readMarks, key)
	for i, c := range b.conversations {
		if c.ID == key.ConversationID && c.IsGroup == key.IsGroup {
			b.conversations[i].Unread = false
		}
	}
	return nil
}

func (b *Backend) TotalUnreadCount(context.Context) (int, error) {
	if err := b.beginOp(OpUnread); err != nil {
		return 0, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.unread, nil
}

func (b *Backend) SubscribeUnreadCount(ctx context.Context) (<-chan int, error) {
	if err := b.beginOp(OpSubscribe); err != nil {
		return nil, err
	}
	return subscribe(ctx, b, b.countSubs), nil
}

func (b *Backend) AvailableRecipients(context.Context) ([]user.User, error) {
	if err := b.beginOp(OpRecipients); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]user.User, len(b.users))
	copy(out, b.users)
	return out, nil
}

func (b *Backend) SearchUsers(_ context.Context, query string) ([]user.User, error) {
	if err := b.beginOp(OpSearch); err != nil {
		return nil, err
	}
	query = core.CleanString(query, true)
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]user.User, 0)
	for _, u := range b.users {
		if query == "" ||
			strings.Contains(strings.ToLower(u.Name), query) ||
			strings.Contains(strings.ToLower(u.Email), query) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (b *Backend) CreateGroup(_ context.Context, name string, memberIDs []string) (chat.Group, error) {
	if err := b.beginOp(OpCreateGroup); err != nil {
		return chat.Group{}, err
	}
	grp := chat.Group{
		ID:        uuid.NewString(),
		Name:      name,
		MemberIDs: memberIDs,
		CreatedAt: time.Now().UTC(),
	}
	b.mu.Lock()
	b.groups[grp.ID] = grp
	b.conversations = append(b.conversations, chat.Conversation{
		ID:           grp.ID,
		IsGroup:      true,
		Name:         grp.Name,
		MemberIDs:    grp.MemberIDs,
		LastActivity: grp.CreatedAt,
	})
	b.mu.Unlock()
	return grp, nil
}

func (b *Backend) UserGroups(context.Context) ([]chat.Group, error) {
	if err := b.beginOp(OpGroups); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]chat.Group, 0, len(b.groups))
	for _, grp := range b.groups {
		out = append(out, grp)
	}
	return out, nil
}

func (b *Backend) Group(_ context.Context, groupID string) (*chat.Group, error) {
	if err := b.beginOp(OpGroups); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if grp, ok := b.groups[groupID]; ok {
		return &grp, nil
	}
	return nil, nil
}
