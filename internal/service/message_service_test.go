package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/murmur-app/murmur-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstContact sets up mutual followers with a fresh conversation.
func firstContact(t *testing.T, s *stack) (a, b *model.User, cv *model.Conversation) {
	t.Helper()
	a = s.mustUser(t, "ada")
	b = s.mustUser(t, "grace")
	s.mustMutualFollow(t, a.ID, b.ID)
	cv, err := s.convs.GetOrCreate(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	return a, b, cv
}

func TestSend_FirstContactScenario(t *testing.T) {
	s := newStack(t, 1000)
	a, b, cv := firstContact(t, s)
	ctx := context.Background()

	before := cv.LastActivityAt
	time.Sleep(20 * time.Millisecond)

	msg, err := s.msgs.Send(ctx, cv.ID, a.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Body)
	assert.False(t, msg.IsRead)

	got, err := s.convs.Get(ctx, cv.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, got.LastActivityAt.After(before), "send bumps last activity")

	// recipient views the conversation: one message, now read
	msgs, err := s.msgs.ListVisible(ctx, cv.ID, b.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsRead)
	assert.Equal(t, a.ID, msgs[0].SenderID)
}

func TestSend_Validation(t *testing.T) {
	s := newStack(t, 1000)
	a, _, cv := firstContact(t, s)
	ctx := context.Background()

	_, err := s.msgs.Send(ctx, cv.ID, a.ID, "   \t\n ")
	assert.ErrorIs(t, err, ErrEmptyBody)

	_, err = s.msgs.Send(ctx, cv.ID, a.ID, strings.Repeat("x", 1001))
	assert.ErrorIs(t, err, ErrBodyTooLong)

	// exactly at the bound succeeds
	_, err = s.msgs.Send(ctx, cv.ID, a.ID, strings.Repeat("x", 1000))
	assert.NoError(t, err)

	// nothing persisted for the rejected attempts
	var n int64
	require.NoError(t, s.db.Model(&model.Message{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestSend_NotParticipant(t *testing.T) {
	s := newStack(t, 1000)
	_, _, cv := firstContact(t, s)
	eve := s.mustUser(t, "eve")

	_, err := s.msgs.Send(context.Background(), cv.ID, eve.ID, "let me in")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = s.msgs.Send(context.Background(), 999999, eve.ID, "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSend_SurvivesUnfollowButNotBlock(t *testing.T) {
	s := newStack(t, 1000)
	a, b, cv := firstContact(t, s)
	ctx := context.Background()

	// post-creation leniency: unfollow does not close the channel
	require.NoError(t, s.rel.Unfollow(ctx, b.ID, a.ID))
	_, err := s.msgs.Send(ctx, cv.ID, a.ID, "still here")
	require.NoError(t, err)

	// a block does, from either side
	require.NoError(t, s.rel.Block(ctx, a.ID, b.ID))
	_, err = s.msgs.Send(ctx, cv.ID, a.ID, "one more")
	assert.ErrorIs(t, err, ErrBlocked)
	_, err = s.msgs.Send(ctx, cv.ID, b.ID, "hello?")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestListVisible_SoftDeleteAsymmetry(t *testing.T) {
	s := newStack(t, 1000)
	a, b, cv := firstContact(t, s)
	ctx := context.Background()

	msg, err := s.msgs.Send(ctx, cv.ID, a.ID, "oops")
	require.NoError(t, err)

	require.NoError(t, s.msgs.SoftDelete(ctx, msg.ID, a.ID))

	mine, err := s.msgs.ListVisible(ctx, cv.ID, a.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, mine, "hidden from the deleting side")

	theirs, err := s.msgs.ListVisible(ctx, cv.ID, b.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, theirs, 1, "still visible to the other side")
	assert.Equal(t, "oops", theirs[0].Body)

	// row still exists in storage while one side can see it
	var n int64
	require.NoError(t, s.db.Model(&model.Message{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestSoftDelete_IdempotentAndPurgesWhenBothHide(t *testing.T) {
	s := newStack(t, 1000)
	a, b, cv := firstContact(t, s)
	ctx := context.Background()

	msg, err := s.msgs.Send(ctx, cv.ID, a.ID, "bye")
	require.NoError(t, err)

	require.NoError(t, s.msgs.SoftDelete(ctx, msg.ID, a.ID))
	require.NoError(t, s.msgs.SoftDelete(ctx, msg.ID, a.ID), "repeat is a no-op")

	require.NoError(t, s.msgs.SoftDelete(ctx, msg.ID, b.ID))

	var n int64
	require.NoError(t, s.db.Model(&model.Message{}).Count(&n).Error)
	assert.Zero(t, n, "both sides hidden, row purged")

	assert.ErrorIs(t, s.msgs.SoftDelete(ctx, msg.ID, a.ID), ErrNotFound)
}

func TestSoftDelete_RequiresParticipant(t *testing.T) {
	s := newStack(t, 1000)
	a, _, cv := firstContact(t, s)
	eve := s.mustUser(t, "eve")
	ctx := context.Background()

	msg, err := s.msgs.Send(ctx, cv.ID, a.ID, "private")
	require.NoError(t, err)

	assert.ErrorIs(t, s.msgs.SoftDelete(ctx, msg.ID, eve.ID), ErrNotParticipant)
	assert.ErrorIs(t, s.msgs.SoftDelete(ctx, 999999, a.ID), ErrNotFound)
}

func TestListSince_StrictBoundary(t *testing.T) {
	s := newStack(t, 1000)
	a, b, cv := firstContact(t, s)
	ctx := context.Background()

	t1 := time.Now().Round(time.Microsecond)
	require.NoError(t, s.msgRepo.Append(ctx, &model.Message{
		ConversationID: cv.ID, SenderID: a.ID, Body: "m1", CreatedAt: t1,
	}))

	// since just before t1 yields the message
	got, err := s.msgs.ListSince(ctx, cv.ID, b.ID, t1.Add(-time.Microsecond))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].Body)

	// since exactly t1 yields nothing: strict greater-than
	got, err = s.msgs.ListSince(ctx, cv.ID, b.ID, t1)
	require.NoError(t, err)
	assert.Empty(t, got)

	// polling must not mark anything read
	unread, err := s.msgRepo.CountUnread(ctx, cv.ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

func TestListSince_EqualTimestampsOrderedByID(t *testing.T) {
	s := newStack(t, 1000)
	a, b, cv := firstContact(t, s)
	ctx := context.Background()

	ts := time.Now().Round(time.Microsecond)
	first := &model.Message{ConversationID: cv.ID, SenderID: a.ID, Body: "first", CreatedAt: ts}
	second := &model.Message{ConversationID: cv.ID, SenderID: a.ID, Body: "second", CreatedAt: ts}
	require.NoError(t, s.msgRepo.Append(ctx, first))
	require.NoError(t, s.msgRepo.Append(ctx, second))

	got, err := s.msgs.ListSince(ctx, cv.ID, b.ID, ts.Add(-time.Microsecond))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Body)
	assert.Equal(t, "second", got[1].Body)
	assert.Less(t, got[0].ID, got[1].ID)

	// the shared timestamp is excluded as a boundary for both rows
	got, err = s.msgs.ListSince(ctx, cv.ID, b.ID, ts)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListVisible_Ordering(t *testing.T) {
	s := newStack(t, 1000)
	a, b, cv := firstContact(t, s)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute).Round(time.Microsecond)
	bodies := []string{"one", "two", "three"}
	for i, body := range bodies {
		sender := a.ID
		if i%2 == 1 {
			sender = b.ID
		}
		require.NoError(t, s.msgRepo.Append(ctx, &model.Message{
			ConversationID: cv.ID, SenderID: sender, Body: body, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := s.msgs.ListVisible(ctx, cv.ID, a.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, body := range bodies {
		assert.Equal(t, body, got[i].Body)
	}
}
