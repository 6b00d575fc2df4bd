package database

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowx/knowx-back/internal/models"
)

// testStore runs the behaviour every MessageStore must share.
// Users 1 to 5 and offer 1 must exist in the store under test.
func testStore(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("append assigns id and starts unread", func(t *testing.T) {
		db := newStore(t)
		ref := int64(1)

		first, err := db.Append(ctx, models.NewMessage{SenderID: 1, ReceiverID: 2, Content: "hi", RequestRef: &ref})
		require.NoError(t, err)
		second, err := db.Append(ctx, models.NewMessage{SenderID: 3, ReceiverID: 2, Content: "hello"})
		require.NoError(t, err)

		assert.Greater(t, second.ID, first.ID)
		assert.False(t, first.IsRead)
		assert.False(t, first.CreatedAt.IsZero())
		require.NotNil(t, first.RequestRef)
		assert.Equal(t, int64(1), *first.RequestRef)
		assert.Nil(t, second.RequestRef)
		assert.False(t, second.CreatedAt.Before(first.CreatedAt))
	})

	t.Run("list by participant covers sent and received", func(t *testing.T) {
		db := newStore(t)
		mustAppend(t, db, 1, 2, "a")
		mustAppend(t, db, 2, 1, "b")
		mustAppend(t, db, 3, 1, "c")
		mustAppend(t, db, 3, 4, "not mine")

		msgs, err := db.ListByParticipant(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, msgs, 3)

		none, err := db.ListByParticipant(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("list between is ordered and symmetric", func(t *testing.T) {
		db := newStore(t)
		a := mustAppend(t, db, 1, 2, "one")
		b := mustAppend(t, db, 2, 1, "two")
		mustAppend(t, db, 1, 3, "elsewhere")
		c := mustAppend(t, db, 1, 2, "three")

		fromOne, err := db.ListBetween(ctx, 1, 2)
		require.NoError(t, err)
		fromTwo, err := db.ListBetween(ctx, 2, 1)
		require.NoError(t, err)

		assert.Equal(t, []int64{a.ID, b.ID, c.ID}, ids(fromOne))
		assert.Equal(t, ids(fromOne), ids(fromTwo))
	})

	t.Run("mark read received from only touches received messages", func(t *testing.T) {
		db := newStore(t)
		mustAppend(t, db, 1, 2, "to two")
		mustAppend(t, db, 1, 2, "to two again")
		mustAppend(t, db, 2, 1, "to one")
		mustAppend(t, db, 3, 2, "from three")

		n, err := db.MarkReadReceivedFrom(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = db.MarkReadReceivedFrom(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n, "second call is a no-op")

		unreadTwo, err := db.CountUnread(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), unreadTwo, "message from user 3 stays unread")

		unreadOne, err := db.CountUnread(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), unreadOne, "user 1's inbox is untouched")
	})

	t.Run("mark one requires the receiver", func(t *testing.T) {
		db := newStore(t)
		msg := mustAppend(t, db, 1, 2, "hi")

		_, _, err := db.MarkOne(ctx, msg.ID, 1)
		assert.ErrorIs(t, err, ErrMessageNotFound, "sender cannot mark")

		_, _, err = db.MarkOne(ctx, msg.ID+1000, 2)
		assert.ErrorIs(t, err, ErrMessageNotFound)

		got, flipped, err := db.MarkOne(ctx, msg.ID, 2)
		require.NoError(t, err)
		assert.True(t, got.IsRead)
		assert.True(t, flipped)

		again, flipped, err := db.MarkOne(ctx, msg.ID, 2)
		require.NoError(t, err)
		assert.False(t, flipped, "already read")
		assert.True(t, again.IsRead)
	})

	t.Run("concurrent appends get distinct ids", func(t *testing.T) {
		db := newStore(t)
		const n = 20

		var wg sync.WaitGroup
		got := make(chan int64, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(sender int64) {
				defer wg.Done()
				m, err := db.Append(ctx, models.NewMessage{SenderID: sender, ReceiverID: 5, Content: "x"})
				if assert.NoError(t, err) {
					got <- m.ID
				}
			}(int64(i%4 + 1))
		}
		wg.Wait()
		close(got)

		seen := map[int64]bool{}
		for id := range got {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
	})

	t.Run("directory lookups skip unknown ids", func(t *testing.T) {
		db := newStore(t)

		profiles, err := db.GetProfiles(ctx, []int64{1, 999})
		require.NoError(t, err)
		assert.Contains(t, profiles, int64(1))
		assert.NotContains(t, profiles, int64(999))

		titles, err := db.GetOfferTitles(ctx, []int64{1, 999})
		require.NoError(t, err)
		assert.Contains(t, titles, int64(1))
		assert.NotContains(t, titles, int64(999))

		empty, err := db.GetProfiles(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func mustAppend(t *testing.T, db MessageStore, from, to int64, content string) *models.Message {
	t.Helper()
	msg, err := db.Append(context.Background(), models.NewMessage{SenderID: from, ReceiverID: to, Content: content})
	require.NoError(t, err)
	return msg
}

func ids(msgs []*models.Message) []int64 {
	out := make([]int64, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
