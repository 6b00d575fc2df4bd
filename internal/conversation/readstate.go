package conversation

import (
	"context"
	"errors"

	"github.com/knowx/knowx-back/internal/database"
	"github.com/knowx/knowx-back/internal/models"
)

// ReadState owns the unread to read transition. Only the receiver of a
// message can flip it, and it is never flipped back.
type ReadState struct {
	store  database.MessageStore
	labels Labeler
}

func NewReadState(store database.MessageStore, labels Labeler) *ReadState {
	return &ReadState{store: store, labels: labels}
}

// OpenConversation returns the thread between self and counterpart in
// (created_at, id) order, then marks what counterpart sent to self as read.
// The returned rows show the read state from before the open.
func (r *ReadState) OpenConversation(ctx context.Context, self, counterpart int64) ([]*models.ThreadMessage, error) {
	msgs, err := r.store.ListBetween(ctx, self, counterpart)
	if err != nil {
		return nil, storeError("list thread", err)
	}

	out := make([]*models.ThreadMessage, 0, len(msgs))
	if len(msgs) > 0 {
		names, titles := labels(ctx, r.labels, msgs, []int64{self, counterpart})
		for _, m := range msgs {
			out = append(out, &models.ThreadMessage{
				Message:      *m,
				SenderName:   nameOf(names, m.SenderID),
				ReceiverName: nameOf(names, m.ReceiverID),
				OfferTitle:   titleOf(titles, m.RequestRef),
			})
		}
	}

	n, err := r.store.MarkReadReceivedFrom(ctx, self, counterpart)
	if err != nil {
		return nil, storeError("mark thread read", err)
	}
	if n > 0 {
		messagesMarkedRead.Add(float64(n))
		log.Debug("user %d read %d messages from %d", self, n, counterpart)
	}
	return out, nil
}

// UnreadTotal counts every unread message addressed to self
func (r *ReadState) UnreadTotal(ctx context.Context, self int64) (int64, error) {
	n, err := r.store.CountUnread(ctx, self)
	if err != nil {
		return 0, storeError("count unread", err)
	}
	return n, nil
}

// MarkOne marks a single message as read. Messages self did not receive are
// reported as not found.
func (r *ReadState) MarkOne(ctx context.Context, messageID, self int64) (*models.Message, error) {
	msg, flipped, err := r.store.MarkOne(ctx, messageID, self)
	if errors.Is(err, database.ErrMessageNotFound) {
		return nil, &NotFoundError{Resource: "message"}
	}
	if err != nil {
		return nil, storeError("mark message read", err)
	}
	if flipped {
		messagesMarkedRead.Inc()
	}
	return msg, nil
}
