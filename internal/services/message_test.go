package services

import (
	"context"
	"testing"

	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesRequireAcceptedConnection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice, bob := h.user(t, "alice"), h.user(t, "bob")

	_, err := h.messages.Send(ctx, alice.ID, bob.ID, "hi")
	requireKind(t, err, apperr.KindForbidden)

	conn, err := h.connections.Send(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)

	_, err = h.messages.Send(ctx, alice.ID, bob.ID, "hi")
	requireKind(t, err, apperr.KindForbidden)

	_, err = h.connections.Respond(ctx, bob.ID, conn.ID, ActionAccept)
	require.NoError(t, err)

	msg, err := h.messages.Send(ctx, alice.ID, bob.ID, " hi ")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Content)

	sent := h.publisher.ofType(models.NotifyMessage)
	require.Len(t, sent, 1)
	assert.Equal(t, []string{bob.ID}, sent[0].Recipients)
}

func TestSendValidatesContent(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")

	_, err := h.messages.Send(context.Background(), alice.ID, alice.ID, "hi")
	requireKind(t, err, apperr.KindValidation)

	_, err = h.messages.Send(context.Background(), alice.ID, "bob", "  ")
	requireKind(t, err, apperr.KindValidation)
}

func TestConversationsAndReadState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice, bob, carol := h.user(t, "alice"), h.user(t, "bob"), h.user(t, "carol")
	h.connect(t, alice, bob)
	h.connect(t, carol, alice)

	for _, content := range []string{"one", "two"} {
		_, err := h.messages.Send(ctx, bob.ID, alice.ID, content)
		require.NoError(t, err)
	}
	_, err := h.messages.Send(ctx, carol.ID, alice.ID, "hey")
	require.NoError(t, err)

	conversations, err := h.messages.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, carol.ID, conversations[0].UserID)
	assert.Equal(t, bob.ID, conversations[1].UserID)
	assert.EqualValues(t, 2, conversations[1].UnreadCount)
	assert.Equal(t, "two", conversations[1].LastMessage.Content)

	marked, err := h.messages.MarkRead(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)

	thread, total, err := h.messages.Thread(ctx, alice.ID, bob.ID, feed.NewPage(1, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, thread, 1)
	assert.Equal(t, "two", thread[0].Content)
}
