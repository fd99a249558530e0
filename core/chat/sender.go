package chat

import (
	"context"
	"sync"
)

// Sender tracks one logical in-flight send at a time for its consumer. It
// never touches a Thread directly: the backend re-broadcasts accepted
// messages on the push stream, which is the single source of truth for
// message ordering.
type Sender struct {
	notifier

	backend Backend

	mu      sync.Mutex
	sending bool
	errMsg  string
}

func NewSender(backend Backend) *Sender {
	return &Sender{backend: backend}
}

// Send dispatches the message through the direct or group variant and
// reports success. On failure the error message is retained for the UI and
// false is returned; there is no automatic retry.
func (s *Sender) Send(ctx context.Context, conversationID, content string, isGroup bool) bool {
	s.mu.Lock()
	s.sending = true
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()

	var err error
	if isGroup {
		err = s.backend.SendGroupMessage(ctx, conversationID, content)
	} else {
		err = s.backend.SendDirectMessage(ctx, conversationID, content)
	}

	s.mu.Lock()
	s.sending = false
	if err != nil {
		s.errMsg = err.Error()
	}
	s.mu.Unlock()
	s.notify()
	return err == nil
}

func (s *Sender) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// Err returns the last send failure message, or "" when idle/successful.
func (s *Sender) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ClearError resets the pipeline to its idle state.
func (s *Sender) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
}
