package chat

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/classio/classio/core"
)

// ThreadKey identifies one open conversation's thread.
type ThreadKey struct {
	ConversationID string
	IsGroup        bool
}

// ThreadOptions configures an opened Thread. Directory and Unread, when set,
// are refreshed after every mark-as-read so list badges and the global
// counter stay consistent; their push channels are independent of the
// thread's, so this is the only synchronization between them.
type ThreadOptions struct {
	Directory *Directory
	Unread    *UnreadCounter
	PageSize  int
	Logger    core.Logger
}

// Thread holds the message window of one open conversation: newest-first
// list, backward pagination, live prepends from the push stream and
// best-effort read marking. One instance exists per open conversation.
type Thread struct {
	notifier

	backend   Backend
	directory *Directory
	unread    *UnreadCounter
	log       core.Logger
	key       ThreadKey
	pageSize  int

	cancel context.CancelFunc
	bg     context.Context

	mu       sync.Mutex
	messages []Message
	loading  bool
	hasMore  bool
	err      error
	closed   bool
}

// OpenThread loads the first page, opens the message push subscription and
// marks the conversation read. Load failure is surfaced through Err; the
// thread stays usable (Refresh retries).
func OpenThread(ctx context.Context, backend Backend, key ThreadKey, opts ThreadOptions) *Thread {
	log := opts.Logger
	if log == nil {
		log = core.NopLogger{}
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = core.Conf.Chat.PageSize
	}

	bg, cancel := context.WithCancel(ctx)
	t := &Thread{
		backend:   backend,
		directory: opts.Directory,
		unread:    opts.Unread,
		log:       log,
		key:       key,
		pageSize:  pageSize,
		cancel:    cancel,
		bg:        bg,
	}

	if err := t.Refresh(ctx); err != nil {
		t.log.Warn("chat: initial message load failed", err)
	}

	events, err := backend.SubscribeMessages(bg)
	if err != nil {
		t.log.Warn("chat: message subscription unavailable", err)
	} else {
		go t.listen(events)
	}

	go t.markRead(bg)
	return t
}

// Refresh clears the window and reloads the first page.
func (t *Thread) Refresh(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.messages = nil
	t.hasMore = false
	t.loading = true
	t.mu.Unlock()
	t.notify()

	page, err := t.fetchPage(ctx, "")

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.loading = false
	if err != nil {
		t.err = err
	} else {
		t.messages = page
		t.hasMore = len(page) >= t.pageSize
		t.err = nil
	}
	t.mu.Unlock()
	t.notify()
	return err
}

// LoadMore fetches the page strictly older than the current oldest message
// and appends it to the tail. It is a no-op while a load is in flight, when
// the backend has no more history, or when the window is empty.
func (t *Thread) LoadMore(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.loading || !t.hasMore || len(t.messages) == 0 {
		t.mu.Unlock()
		return nil
	}
	t.loading = true
	beforeID := t.messages[len(t.messages)-1].ID
	t.mu.Unlock()
	t.notify()

	page, err := t.fetchPage(ctx, beforeID)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.loading = false
	if err != nil {
		t.err = err
	} else {
		t.messages = append(t.messages, page...)
		t.hasMore = len(page) >= t.pageSize
		t.err = nil
	}
	t.mu.Unlock()
	t.notify()
	return err
}

// Messages returns the current window, newest first.
func (t *Thread) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Thread) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

func (t *Thread) HasMore() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasMore
}

func (t *Thread) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Thread) Key() ThreadKey {
	return t.key
}

// Close cancels the push subscription and discards any in-flight update.
func (t *Thread) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.cancel()
}

func (t *Thread) fetchPage(ctx context.Context, beforeID string) ([]Message, error) {
	var (
		page []Message
		err  error
	)
	if t.key.IsGroup {
		page, err = t.backend.GroupMessages(ctx, t.key.ConversationID, beforeID, t.pageSize)
	} else {
		page, err = t.backend.DirectMessages(ctx, t.key.ConversationID, beforeID, t.pageSize)
	}
	if err != nil {
		return nil, errors.Wrap(err, "fetching messages")
	}
	return page, nil
}

// listen prepends matching push messages. Prepends race in-flight
// pagination: prepends land at the head and page appends at the tail, so
// newest-first order survives the interleaving as long as pages arrive in
// order. The stream is assumed not to redeliver, so no deduplication.
func (t *Thread) listen(events <-chan Message) {
	for msg := range events {
		if !msg.Matches(t.key.ConversationID, t.key.IsGroup) {
			continue
		}
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			return
		}
		t.messages = append([]Message{msg}, t.messages...)
		t.mu.Unlock()
		t.notify()

		// the new message is on screen, so it counts as read
		go t.markRead(t.bg)
	}
}

// markRead is best-effort: failures are logged and dropped, the next
// successful cycle self-corrects. On success the conversation directory and
// unread counter are refreshed together so badges update; their refreshes
// run in parallel and are awaited jointly.
func (t *Thread) markRead(ctx context.Context) {
	var err error
	if t.key.IsGroup {
		err = t.backend.MarkGroupMessagesRead(ctx, t.key.ConversationID)
	} else {
		err = t.backend.MarkDirectMessagesRead(ctx, t.key.ConversationID)
	}
	if err != nil {
		t.log.Debug("chat: mark-as-read failed", err)
		return
	}

	var wg sync.WaitGroup
	if t.directory != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = t.directory.Refresh(ctx)
		}()
	}
	if t.unread != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = t.unread.Refresh(ctx)
		}()
	}
	wg.Wait()
}
