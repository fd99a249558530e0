package chat

import "sync"

// notifier is the change-signal half of every store: consumers subscribe for
// a ping after each state write and read the new state through the store's
// accessors. Signals are coalesced; a subscriber that has not drained its
// channel still sees at least one pending signal.
type notifier struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// Subscribe registers a change listener. The returned cancel func must be
// called when the listener goes away; it is safe to call more than once.
func (n *notifier) Subscribe() (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]chan struct{})
	}
	id := n.next
	n.next++
	ch := make(chan struct{}, 1)
	n.subs[id] = ch
	return ch, func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *notifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
