package chatapi

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/classio/classio/core"
	"github.com/classio/classio/core/chat"
)

// Push endpoints. Each subscription dials its own socket; channels are never
// shared between consumers.
const (
	conversationsPath = "/v1/chat/ws/conversations"
	messagesPath      = "/v1/chat/ws/messages"
	unreadPath        = "/v1/chat/ws/unread"
)

func (c *Client) SubscribeConversations(ctx context.Context) (<-chan []chat.Conversation, error) {
	return subscribe[[]chat.Conversation](ctx, c, conversationsPath)
}

func (c *Client) SubscribeMessages(ctx context.Context) (<-chan chat.Message, error) {
	return subscribe[chat.Message](ctx, c, messagesPath)
}

func (c *Client) SubscribeUnreadCount(ctx context.Context) (<-chan int, error) {
	ch, err := subscribe[struct {
		Count int `json:"count"`
	}](ctx, c, unreadPath)
	if err != nil {
		return nil, err
	}
	counts := make(chan int, 16)
	go func() {
		defer close(counts)
		for evt := range ch {
			counts <- evt.Count
		}
	}()
	return counts, nil
}

// subscribe dials the push endpoint and streams decoded JSON frames until
// ctx is canceled or the socket fails; either way the channel is closed and
// the consumer keeps its last state.
func subscribe[T any](ctx context.Context, c *Client, path string) (<-chan T, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, res, err := websocket.DefaultDialer.DialContext(ctx, c.conf.WebsocketURL+path, header)
	if err != nil {
		if res != nil {
			return nil, &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		}
		return nil, errors.Wrapf(err, "dialing %s", path)
	}

	ch := make(chan T, 16)

	// close the socket on teardown so the read loop unblocks
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func(log core.Logger) {
		defer close(ch)
		defer conn.Close()
		for {
			var evt T
			if err := conn.ReadJSON(&evt); err != nil {
				if ctx.Err() == nil {
					log.Debug("chat: push stream closed", errors.Wrapf(err, "reading %s", path))
				}
				return
			}
			select {
			case ch <- evt:
			case <-ctx.Done():
				return
			}
		}
	}(c.log)

	return ch, nil
}
