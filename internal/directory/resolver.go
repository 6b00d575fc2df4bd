package directory

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/knowx/knowx-back/internal/cache"
	"github.com/knowx/knowx-back/internal/database"
	"github.com/knowx/knowx-back/internal/logger"
)

// UnknownUser labels a counterpart whose profile no longer exists
const UnknownUser = "Unknown user"

var log = logger.New("directory")

// Resolver turns user and offer ids into display labels.
// Hits are served from the cache; misses go to the directory and are written back.
// Cache failures are logged and otherwise ignored.
type Resolver struct {
	dir   database.Directory
	cache cache.Cache
	ttl   time.Duration
}

func NewResolver(dir database.Directory, c cache.Cache, ttl time.Duration) *Resolver {
	if c == nil {
		c = cache.Noop{}
	}
	return &Resolver{dir: dir, cache: c, ttl: ttl}
}

func userKey(id int64) string  { return "user:" + strconv.FormatInt(id, 10) + ":name" }
func offerKey(id int64) string { return "offer:" + strconv.FormatInt(id, 10) + ":title" }

func unique(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Names returns a label for every id. Ids without a profile, or with a blank
// name, get UnknownUser. On a directory error the map is still complete
// (cache hits plus fallbacks) and the error is returned alongside it.
func (r *Resolver) Names(ctx context.Context, ids []int64) (map[int64]string, error) {
	ids = unique(ids)
	out := make(map[int64]string, len(ids))
	missing := r.fromCache(ctx, ids, userKey, out)
	if len(missing) == 0 {
		return out, nil
	}

	profiles, err := r.dir.GetProfiles(ctx, missing)
	for _, id := range missing {
		name := ""
		if err == nil {
			name = profiles[id].FullName()
		}
		if name == "" {
			out[id] = UnknownUser
			continue
		}
		out[id] = name
		r.store(ctx, userKey(id), name)
	}
	return out, err
}

// OfferTitles returns the title of every offer that still exists.
// Deleted offers are absent from the map.
func (r *Resolver) OfferTitles(ctx context.Context, ids []int64) (map[int64]string, error) {
	ids = unique(ids)
	out := make(map[int64]string, len(ids))
	missing := r.fromCache(ctx, ids, offerKey, out)
	if len(missing) == 0 {
		return out, nil
	}

	titles, err := r.dir.GetOfferTitles(ctx, missing)
	if err != nil {
		return out, err
	}
	for _, id := range missing {
		if title, ok := titles[id]; ok {
			out[id] = title
			r.store(ctx, offerKey(id), title)
		}
	}
	return out, nil
}

func (r *Resolver) fromCache(ctx context.Context, ids []int64, key func(int64) string, out map[int64]string) []int64 {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}

	hits, err := r.cache.MGet(ctx, keys...)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		log.Warn("cache mget failed: %v", err)
		hits = nil
	}

	var missing []int64
	for i, id := range ids {
		if v, ok := hits[keys[i]]; ok {
			out[id] = v
			continue
		}
		missing = append(missing, id)
	}
	return missing
}

func (r *Resolver) store(ctx context.Context, key, value string) {
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		log.Warn("cache set %s failed: %v", key, err)
	}
}
