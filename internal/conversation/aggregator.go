package conversation

import (
	"context"
	"sort"

	"github.com/knowx/knowx-back/internal/database"
	"github.com/knowx/knowx-back/internal/models"
)

// Summary is one counterpart's share of a user's messages
type Summary struct {
	CounterpartID int64
	Last          *models.Message
	MessageCount  int
	UnreadCount   int
}

// Summarize groups the messages of self by counterpart and orders the groups by
// their latest message, newest first. Messages self did not take part in are ignored.
// A message self sent to self forms a group of its own.
func Summarize(self int64, msgs []*models.Message) []Summary {
	groups := make(map[int64]*Summary)
	for _, m := range msgs {
		if m.SenderID != self && m.ReceiverID != self {
			continue
		}
		cp := m.Counterpart(self)
		s, ok := groups[cp]
		if !ok {
			s = &Summary{CounterpartID: cp, Last: m}
			groups[cp] = s
		}
		s.MessageCount++
		if m.ReceiverID == self && !m.IsRead {
			s.UnreadCount++
		}
		if m.After(s.Last) {
			s.Last = m
		}
	}

	out := make([]Summary, 0, len(groups))
	for _, s := range groups {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Last.After(out[j].Last)
	})
	return out
}

// Aggregator builds the conversation list of a user
type Aggregator struct {
	store  database.MessageStore
	labels Labeler
}

func NewAggregator(store database.MessageStore, labels Labeler) *Aggregator {
	return &Aggregator{store: store, labels: labels}
}

// Conversations lists one summary per counterpart of self. The result is a
// snapshot: messages appended while it runs may or may not be included.
func (a *Aggregator) Conversations(ctx context.Context, self int64) ([]*models.ConversationSummary, error) {
	msgs, err := a.store.ListByParticipant(ctx, self)
	if err != nil {
		return nil, storeError("list conversations", err)
	}

	sums := Summarize(self, msgs)
	out := make([]*models.ConversationSummary, 0, len(sums))
	if len(sums) == 0 {
		return out, nil
	}

	lasts := make([]*models.Message, len(sums))
	cps := make([]int64, len(sums))
	for i, s := range sums {
		lasts[i] = s.Last
		cps[i] = s.CounterpartID
	}
	names, titles := labels(ctx, a.labels, lasts, cps)

	for _, s := range sums {
		out = append(out, &models.ConversationSummary{
			CounterpartID:   s.CounterpartID,
			CounterpartName: nameOf(names, s.CounterpartID),
			LastMessage:     s.Last,
			MessageCount:    s.MessageCount,
			UnreadCount:     s.UnreadCount,
			RequestRef:      s.Last.RequestRef,
			OfferTitle:      titleOf(titles, s.Last.RequestRef),
			CreatedAt:       s.Last.CreatedAt,
		})
	}
	return out, nil
}
