package chat

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/classio/classio/core"
)

// UnreadCounter is the process-wide live count of unread messages. It is
// kept for the whole session and refreshed explicitly after mark-as-read
// operations, since its push channel is independent of the other stores'.
type UnreadCounter struct {
	notifier

	backend Backend
	log     core.Logger
	cancel  context.CancelFunc

	mu     sync.RWMutex
	count  int
	err    error
	closed bool
}

// OpenUnreadCounter loads the initial count and opens the push subscription.
func OpenUnreadCounter(ctx context.Context, backend Backend, log core.Logger) *UnreadCounter {
	if log == nil {
		log = core.NopLogger{}
	}
	ctx, cancel := context.WithCancel(ctx)
	u := &UnreadCounter{backend: backend, log: log, cancel: cancel}

	if err := u.Refresh(ctx); err != nil {
		u.log.Warn("chat: initial unread count load failed", err)
	}

	counts, err := backend.SubscribeUnreadCount(ctx)
	if err != nil {
		u.log.Warn("chat: unread count subscription unavailable", err)
		return u
	}
	go u.listen(counts)
	return u
}

// Refresh re-fetches and replaces the count; used as the explicit
// synchronization point after read marking elsewhere.
func (u *UnreadCounter) Refresh(ctx context.Context) error {
	count, err := u.backend.TotalUnreadCount(ctx)

	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		err = errors.Wrap(err, "fetching unread count")
		u.err = err
	} else {
		u.count = count
		u.err = nil
	}
	u.mu.Unlock()
	u.notify()
	return err
}

func (u *UnreadCounter) Count() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.count
}

func (u *UnreadCounter) Err() error {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.err
}

// Close cancels the push subscription; pending updates are discarded.
func (u *UnreadCounter) Close() {
	u.mu.Lock()
	u.closed = true
	u.mu.Unlock()
	u.cancel()
}

func (u *UnreadCounter) listen(counts <-chan int) {
	for count := range counts {
		u.mu.Lock()
		if u.closed {
			u.mu.Unlock()
			return
		}
		u.count = count
		u.mu.Unlock()
		u.notify()
	}
}
