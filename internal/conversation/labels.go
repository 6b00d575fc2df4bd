package conversation

import (
	"context"

	"github.com/knowx/knowx-back/internal/directory"
	"github.com/knowx/knowx-back/internal/logger"
	"github.com/knowx/knowx-back/internal/models"
)

var log = logger.New("conversation")

// Labeler resolves display data owned by other services.
// *directory.Resolver is the production implementation.
type Labeler interface {
	Names(ctx context.Context, ids []int64) (map[int64]string, error)
	OfferTitles(ctx context.Context, ids []int64) (map[int64]string, error)
}

// labels resolves names and titles for a batch of messages. Lookup failures
// only cost the labels: names fall back to directory.UnknownUser, titles to "".
func labels(ctx context.Context, l Labeler, msgs []*models.Message, userIDs []int64) (names, titles map[int64]string) {
	var refs []int64
	for _, m := range msgs {
		if m.RequestRef != nil {
			refs = append(refs, *m.RequestRef)
		}
	}

	names, err := l.Names(ctx, userIDs)
	if err != nil {
		log.Warn("resolving %d names: %v", len(userIDs), err)
	}
	if names == nil {
		names = map[int64]string{}
	}

	titles = map[int64]string{}
	if len(refs) > 0 {
		t, err := l.OfferTitles(ctx, refs)
		if err != nil {
			log.Warn("resolving %d offer titles: %v", len(refs), err)
		}
		if t != nil {
			titles = t
		}
	}
	return names, titles
}

func nameOf(names map[int64]string, id int64) string {
	if n := names[id]; n != "" {
		return n
	}
	return directory.UnknownUser
}

func titleOf(titles map[int64]string, ref *int64) string {
	if ref == nil {
		return ""
	}
	return titles[*ref]
}
