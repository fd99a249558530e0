package chat_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/classio/classio/core/chat"
	dummychat "github.com/classio/classio/storage/dummy"
	testutil "github.com/classio/classio/tests"
)

func TestSenderSuccess(t *testing.T) {
	backend := dummychat.Open()
	s := chat.NewSender(backend)

	assert.True(t, s.Send(context.Background(), "peer1", "hi", false))
	assert.False(t, s.Sending())
	assert.Empty(t, s.Err())

	sent := backend.SentMessages()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "peer1", sent[0].RecipientID)
		assert.Equal(t, "hi", sent[0].Content)
	}
}

func TestSenderGroupVariant(t *testing.T) {
	backend := dummychat.Open()
	s := chat.NewSender(backend)

	assert.True(t, s.Send(context.Background(), "g1", "hello all", true))
	sent := backend.SentMessages()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "g1", sent[0].GroupID)
		assert.Empty(t, sent[0].RecipientID)
	}
}

func TestSenderFailureDoesNotTouchThread(t *testing.T) {
	key := chat.ThreadKey{ConversationID: "peer1"}
	backend := dummychat.Open()
	backend.SeedMessages(key, testutil.MessagePage(2, "m", "peer1", "me"))

	th := openThread(t, backend, key, chat.ThreadOptions{})
	before := th.Messages()

	backend.Fail(dummychat.OpSend, errors.New("rejected"))
	s := chat.NewSender(backend)

	assert.False(t, s.Send(context.Background(), "peer1", "hi", false))
	assert.False(t, s.Sending())
	assert.Contains(t, s.Err(), "rejected")

	// reconciliation is push-driven only; a failed send leaves the thread alone
	assert.Equal(t, before, th.Messages())

	s.ClearError()
	assert.Empty(t, s.Err())
}
