// Package dummychat provides an in-memory chat.Backend used by tests and
// local development wiring. Tables are mutex-guarded; push events are driven
// explicitly through the Push* methods.
package dummychat

import (
	"context"
	"sync"

	"github.com/classio/classio/core/chat"
	"github.com/classio/classio/core/user"
)

type Backend struct {
	mu sync.RWMutex

	conversations []chat.Conversation
	messages      map[chat.ThreadKey][]chat.Message // newest-first
	groups        map[string]chat.Group
	users         []user.User
	unread        int

	sent      []chat.Message
	readMarks []chat.ThreadKey

	// per-operation error injection
	failures map[string]error
	// fetch counters, keyed like failures
	calls map[string]int

	subMu     sync.Mutex
	nextSub   int
	convSubs  map[int]chan []chat.Conversation
	msgSubs   map[int]chan chat.Message
	countSubs map[int]chan int
}

var _ chat.Backend = (*Backend)(nil)

func Open() *Backend {
	return &Backend{
		messages:  make(map[chat.ThreadKey][]chat.Message),
		groups:    make(map[string]chat.Group),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
		convSubs:  make(map[int]chan []chat.Conversation),
		msgSubs:   make(map[int]chan chat.Message),
		countSubs: make(map[int]chan int),
	}
}

// Operation names accepted by Fail and reported by Calls.
const (
	OpConversations = "conversations"
	OpMessages      = "messages"
	OpSend          = "send"
	OpMarkRead      = "markRead"
	OpUnread        = "unread"
	OpRecipients    = "recipients"
	OpSearch        = "search"
	OpCreateGroup   = "createGroup"
	OpGroups        = "groups"
	OpSubscribe     = "subscribe"
)

// Fail makes the named operation return err until cleared with a nil err.
func (b *Backend) Fail(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

// Calls reports how many times the named operation has been invoked.
func (b *Backend) Calls(op string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.calls[op]
}

func (b *Backend) beginOp(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[op]++
	return b.failures[op]
}

// SentMessages returns every message accepted by the send operations, in
// order, with recipient/group routing filled in.
func (b *Backend) SentMessages() []chat.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]chat.Message, len(b.sent))
	copy(out, b.sent)
	return out
}

// ReadMarks returns every conversation marked read, in call order.
func (b *Backend) ReadMarks() []chat.ThreadKey {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]chat.ThreadKey, len(b.readMarks))
	copy(out, b.readMarks)
	return out
}

// seeding

func (b *Backend) SetConversations(convs []chat.Conversation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations = convs
}

func (b *Backend) SeedMessages(key chat.ThreadKey, msgs []chat.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[key] = msgs
}

func (b *Backend) SetUsers(users []user.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = users
}

func (b *Backend) SetUnread(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unread = count
}

func (b *Backend) AddGroup(grp chat.Group) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups[grp.ID] = grp
}

// push emitters

// PushConversations emits a full conversation list to every subscriber.
func (b *Backend) PushConversations(convs []chat.Conversation) {
	b.mu.Lock()
	b.conversations = convs
	b.mu.Unlock()

	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, ch := range b.convSubs {
		ch <- convs
	}
}

// PushMessage emits one message to every subscriber and stores it at the
// head of the matching thread.
func (b *Backend) PushMessage(msg chat.Message) {
	b.mu.Lock()
	key := chat.ThreadKey{ConversationID: msg.GroupID, IsGroup: true}
	if msg.GroupID == "" {
		key = chat.ThreadKey{ConversationID: msg.RecipientID}
	}
	b.messages[key] = append([]chat.Message{msg}, b.messages[key]...)
	b.mu.Unlock()

	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, ch := range b.msgSubs {
		ch <- msg
	}
}

// PushUnread emits a new total unread count to every subscriber.
func (b *Backend) PushUnread(count int) {
	b.mu.Lock()
	b.unread = count
	b.mu.Unlock()

	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, ch := range b.countSubs {
		ch <- count
	}
}

// CloseStreams severs every open push channel without touching the tables,
// simulating a transient stream failure on the consumers' side.
func (b *Backend) CloseStreams() {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	closeSubs(b.convSubs)
	closeSubs(b.msgSubs)
	closeSubs(b.countSubs)
}

func closeSubs[T any](subs map[int]chan T) {
	for id, ch := range subs {
		delete(subs, id)
		close(ch)
	}
}

// subscription plumbing; each subscriber gets its own channel, closed on ctx
// cancellation or by CloseStreams, mirroring the non-shared push channels of
// the real backend.

func subscribe[T any](ctx context.Context, b *Backend, subs map[int]chan T) <-chan T {
	b.subMu.Lock()
	id := b.nextSub
	b.nextSub++
	ch := make(chan T, 16)
	subs[id] = ch
	b.subMu.Unlock()

	go func() {
		<-ctx.Done()
		b.subMu.Lock()
		defer b.subMu.Unlock()
		// CloseStreams may have severed it already
		if _, ok := subs[id]; ok {
			delete(subs, id)
			close(ch)
		}
	}()
	return ch
}
