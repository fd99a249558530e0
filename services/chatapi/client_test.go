package chatapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/classio/classio/core"
	"github.com/classio/classio/core/chat"
)

func newTestClient(t *testing.T, e *echo.Echo) *Client {
	t.Helper()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	conf := &core.Config{Chat: core.ChatConfig{
		APIBaseURL:   srv.URL,
		WebsocketURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
		PageSize:     50,
	}}
	return NewClient(conf, "test-token", nil)
}

func TestClientConversations(t *testing.T) {
	want := []chat.Conversation{
		{ID: "1", Name: "Ms. Okafor", LastActivity: time.Now().UTC().Truncate(time.Second)},
		{ID: "g1", IsGroup: true, Name: "Grade 5 Parents"},
	}

	e := echo.New()
	e.GET("/v1/chat/conversations", func(ctx echo.Context) error {
		assert.Equal(t, "Bearer test-token", ctx.Request().Header.Get("Authorization"))
		assert.NotEmpty(t, ctx.Request().Header.Get("X-Request-ID"))
		return ctx.JSON(http.StatusOK, want)
	})

	c := newTestClient(t, e)
	got, err := c.Conversations(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestClientMessagePagination(t *testing.T) {
	e := echo.New()
	e.GET("/v1/chat/conversations/:id/messages", func(ctx echo.Context) error {
		assert.Equal(t, "peer1", ctx.Param("id"))
		assert.Equal(t, "m50", ctx.QueryParam("before"))
		assert.Equal(t, "50", ctx.QueryParam("limit"))
		return ctx.JSON(http.StatusOK, []chat.Message{{ID: "m51", SenderID: "peer1", Content: "older"}})
	})

	c := newTestClient(t, e)
	got, err := c.DirectMessages(context.Background(), "peer1", "m50", 50)
	assert.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "m51", got[0].ID)
	}
}

func TestClientSend(t *testing.T) {
	var received sendPayload
	e := echo.New()
	e.POST("/v1/chat/groups/:id/messages", func(ctx echo.Context) error {
		assert.Equal(t, "g1", ctx.Param("id"))
		assert.NoError(t, ctx.Bind(&received))
		return ctx.NoContent(http.StatusCreated)
	})

	c := newTestClient(t, e)
	assert.NoError(t, c.SendGroupMessage(context.Background(), "g1", "hello all"))
	assert.Equal(t, "hello all", received.Content)
}

func TestClientErrorMapping(t *testing.T) {
	e := echo.New()
	e.POST("/v1/chat/conversations/:id/messages", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusForbidden, echo.Map{"error": "role may not initiate"})
	})

	c := newTestClient(t, e)
	err := c.SendDirectMessage(context.Background(), "peer1", "hi")
	var apiErr *APIError
	if assert.ErrorAs(t, err, &apiErr) {
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
		assert.Equal(t, "role may not initiate", apiErr.Message)
	}
}

func TestClientUnreadCount(t *testing.T) {
	e := echo.New()
	e.GET("/v1/chat/unread-count", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"count": 7})
	})

	c := newTestClient(t, e)
	count, err := c.TotalUnreadCount(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestClientGroupNotFound(t *testing.T) {
	e := echo.New()
	e.GET("/v1/chat/groups/:id", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	})

	c := newTestClient(t, e)
	grp, err := c.Group(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, grp)
}

func TestClientSubscribeMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := []chat.Message{
		{ID: "m1", SenderID: "peer1", Content: "hi"},
		{ID: "m2", SenderID: "peer1", Content: "still there?"},
	}

	e := echo.New()
	e.GET("/v1/chat/ws/messages", func(ctx echo.Context) error {
		assert.Equal(t, "Bearer test-token", ctx.Request().Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
		if err != nil {
			return err
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteJSON(f); err != nil {
				return err
			}
		}
		return nil
	})

	c := newTestClient(t, e)
	events, err := c.SubscribeMessages(context.Background())
	assert.NoError(t, err)

	var got []chat.Message
	for msg := range events {
		got = append(got, msg)
	}
	assert.Equal(t, frames, got)
}

func TestClientSubscribeCanceled(t *testing.T) {
	upgrader := websocket.Upgrader{}
	e := echo.New()
	e.GET("/v1/chat/ws/unread", func(ctx echo.Context) error {
		conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
		if err != nil {
			return err
		}
		defer conn.Close()
		// hold the socket open until the client hangs up
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return nil
			}
		}
	})

	c := newTestClient(t, e)
	ctx, cancel := context.WithCancel(context.Background())
	counts, err := c.SubscribeUnreadCount(ctx)
	assert.NoError(t, err)

	cancel()
	select {
	case _, open := <-counts:
		assert.False(t, open, "channel should close on cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after cancellation")
	}
}
