package database

import (
	"context"
	"fmt"

	"github.com/knowx/knowx-back/internal/config"
	"github.com/knowx/knowx-back/internal/models"
)

// MessageStore is the durable log of direct messages. Rows are append-only;
// the only mutation is the one-way is_read transition.
type MessageStore interface {
	// Append assigns id and created_at and stores the message unread
	Append(ctx context.Context, msg models.NewMessage) (*models.Message, error)
	// ListByParticipant returns every message self sent or received
	ListByParticipant(ctx context.Context, self int64) ([]*models.Message, error)
	// ListBetween returns the thread between two users ordered by (created_at, id)
	ListBetween(ctx context.Context, self, counterpart int64) ([]*models.Message, error)
	// MarkReadReceivedFrom flips every unread message counterpart sent to self
	MarkReadReceivedFrom(ctx context.Context, self, counterpart int64) (int64, error)
	// MarkOne marks a single message addressed to self as read.
	// flipped is false when the message was already read.
	MarkOne(ctx context.Context, messageID, self int64) (msg *models.Message, flipped bool, err error)
	// CountUnread counts unread messages addressed to self
	CountUnread(ctx context.Context, self int64) (int64, error)
}

// Directory looks up data owned by the user and offer collaborators.
// Unknown ids are simply absent from the returned maps.
type Directory interface {
	GetProfiles(ctx context.Context, ids []int64) (map[int64]*models.Profile, error)
	GetOfferTitles(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Store is the handle opened at process start and closed at shutdown
type Store interface {
	MessageStore
	Directory

	Ping(ctx context.Context) error
	Close() error
}

type DatabaseType string

const (
	PostgreSQL DatabaseType = "postgres"
	Memory     DatabaseType = "memory"
)

// NewDatabase opens the configured store
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch DatabaseType(cfg.Type) {
	case PostgreSQL:
		db, err := NewPostgresDB(ctx, cfg.DSN(), PoolOptions{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
		return db, nil
	case Memory:
		return NewMemoryDB(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
