package chat

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/classio/classio/core"
)

// ErrClosed is returned by store operations invoked after Close.
var ErrClosed = errors.New("chat: store closed")

// Directory is the authoritative, live-updated view of the user's
// conversation list. It loads once on open, then replaces its cache wholesale
// on every push emission; derived filtered views are recomputed per read.
type Directory struct {
	notifier

	backend Backend
	log     core.Logger
	cancel  context.CancelFunc

	mu            sync.RWMutex
	conversations []Conversation
	loading       bool
	err           error
	closed        bool
}

// OpenDirectory fetches the initial conversation list and opens the push
// subscription. A failed initial fetch is surfaced through Err, not as a
// constructor failure, so the caller can still Refresh later.
func OpenDirectory(ctx context.Context, backend Backend, log core.Logger) *Directory {
	if log == nil {
		log = core.NopLogger{}
	}
	ctx, cancel := context.WithCancel(ctx)
	d := &Directory{backend: backend, log: log, cancel: cancel}

	if err := d.Refresh(ctx); err != nil {
		d.log.Warn("chat: initial conversation load failed", err)
	}

	updates, err := backend.SubscribeConversations(ctx)
	if err != nil {
		// Same policy as a mid-stream failure: keep whatever state we have.
		d.log.Warn("chat: conversations subscription unavailable", err)
		return d
	}
	go d.listen(updates)
	return d
}

// Refresh re-fetches the full list and replaces the cache, or records the
// fetch error without touching the cached conversations. Concurrent
// refreshes are not coalesced; the last one to complete wins.
func (d *Directory) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.loading = true
	d.mu.Unlock()
	d.notify()

	convs, err := d.backend.Conversations(ctx)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.loading = false
	if err != nil {
		err = errors.Wrap(err, "fetching conversations")
		d.err = err
	} else {
		d.conversations = convs
		d.err = nil
	}
	d.mu.Unlock()
	d.notify()
	return err
}

// Conversations returns the cached list, newest activity first as delivered
// by the backend.
func (d *Directory) Conversations() []Conversation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Conversation, len(d.conversations))
	copy(out, d.conversations)
	return out
}

// Filtered returns the cached conversations matching the filter, preserving
// their original order.
func (d *Directory) Filtered(f Filter) []Conversation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Conversation, 0, len(d.conversations))
	for _, c := range d.conversations {
		switch f {
		case FilterDirect:
			if c.IsGroup {
				continue
			}
		case FilterGroups:
			if !c.IsGroup {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func (d *Directory) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

func (d *Directory) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.err
}

// Close cancels the push subscription and marks the directory inactive; any
// update still in flight is discarded.
func (d *Directory) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cancel()
}

// listen replaces the cache on each push emission, last write wins. The
// channel closing (stream failure or teardown) ends the loop with the cached
// state retained, so a transient channel hiccup never blanks a working list.
func (d *Directory) listen(updates <-chan []Conversation) {
	for convs := range updates {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return
		}
		d.conversations = convs
		d.mu.Unlock()
		d.notify()
	}
}
