package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/knowx/knowx-back/internal/models"
)

// MemoryDB keeps the message log in process. It backs local development
// (DB_TYPE=memory) and tests. It does not enforce foreign keys.
type MemoryDB struct {
	mu       sync.RWMutex
	messages []*models.Message
	nextID   int64
	lastAt   time.Time
	now      func() time.Time

	profiles map[int64]*models.Profile
	offers   map[int64]string
	closed   bool
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		nextID:   1,
		now:      func() time.Time { return time.Now().UTC() },
		profiles: make(map[int64]*models.Profile),
		offers:   make(map[int64]string),
	}
}

// SetClock replaces the time source used for created_at
func (db *MemoryDB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// AddProfile registers a user for name lookups
func (db *MemoryDB) AddProfile(p models.Profile) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.profiles[p.ID] = &p
}

// AddOffer registers a request title
func (db *MemoryDB) AddOffer(id int64, title string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.offers[id] = title
}

// DeleteOffer drops a request; messages keep their reference
func (db *MemoryDB) DeleteOffer(id int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.offers, id)
}

func clone(m *models.Message) *models.Message {
	c := *m
	if m.RequestRef != nil {
		ref := *m.RequestRef
		c.RequestRef = &ref
	}
	return &c
}

func (db *MemoryDB) Append(ctx context.Context, in models.NewMessage) (*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrStoreUnavailable
	}

	// created_at never goes backwards relative to id
	at := db.now()
	if at.Before(db.lastAt) {
		at = db.lastAt
	}
	db.lastAt = at

	msg := &models.Message{
		ID:         db.nextID,
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Content:    in.Content,
		CreatedAt:  at,
	}
	if in.RequestRef != nil {
		ref := *in.RequestRef
		msg.RequestRef = &ref
	}
	db.nextID++
	db.messages = append(db.messages, msg)

	return clone(msg), nil
}

func (db *MemoryDB) ListByParticipant(ctx context.Context, self int64) ([]*models.Message, error) {
	return db.filter(ctx, func(m *models.Message) bool {
		return m.SenderID == self || m.ReceiverID == self
	})
}

func (db *MemoryDB) ListBetween(ctx context.Context, self, counterpart int64) ([]*models.Message, error) {
	msgs, err := db.filter(ctx, func(m *models.Message) bool {
		return (m.SenderID == self && m.ReceiverID == counterpart) ||
			(m.SenderID == counterpart && m.ReceiverID == self)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[j].After(msgs[i])
	})
	return msgs, nil
}

func (db *MemoryDB) filter(ctx context.Context, keep func(*models.Message) bool) ([]*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err)
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrStoreUnavailable
	}

	out := []*models.Message{}
	for _, m := range db.messages {
		if keep(m) {
			out = append(out, clone(m))
		}
	}
	return out, nil
}

func (db *MemoryDB) MarkReadReceivedFrom(ctx context.Context, self, counterpart int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, classify(err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return 0, ErrStoreUnavailable
	}

	var n int64
	for _, m := range db.messages {
		if m.ReceiverID == self && m.SenderID == counterpart && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (db *MemoryDB) MarkOne(ctx context.Context, messageID, self int64) (*models.Message, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, classify(err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, false, ErrStoreUnavailable
	}

	for _, m := range db.messages {
		if m.ID == messageID && m.ReceiverID == self {
			flipped := !m.IsRead
			m.IsRead = true
			return clone(m), flipped, nil
		}
	}
	return nil, false, ErrMessageNotFound
}

func (db *MemoryDB) CountUnread(ctx context.Context, self int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, classify(err)
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return 0, ErrStoreUnavailable
	}

	var n int64
	for _, m := range db.messages {
		if m.ReceiverID == self && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (db *MemoryDB) GetProfiles(ctx context.Context, ids []int64) (map[int64]*models.Profile, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrStoreUnavailable
	}

	out := make(map[int64]*models.Profile, len(ids))
	for _, id := range ids {
		if p, ok := db.profiles[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (db *MemoryDB) GetOfferTitles(ctx context.Context, ids []int64) (map[int64]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrStoreUnavailable
	}

	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		if title, ok := db.offers[id]; ok {
			out[id] = title
		}
	}
	return out, nil
}

func (db *MemoryDB) Ping(ctx context.Context) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return ErrStoreUnavailable
	}
	return nil
}

func (db *MemoryDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	return nil
}
