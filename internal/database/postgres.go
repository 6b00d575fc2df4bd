package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq" // PostgreSQL driver

	"github.com/knowx/knowx-back/internal/logger"
	"github.com/knowx/knowx-back/internal/models"
)

var log = logger.New("database")

const messageColumns = "id, sender_id, receiver_id, offer_id, content, created_at, is_read"

// PoolOptions tunes the database/sql connection pool
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type PostgresDB struct {
	*sql.DB
}

func NewPostgresDB(ctx context.Context, connStr string, opts PoolOptions) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, classify(err)
	}

	return &PostgresDB{db}, nil
}

// Migrate creates the tables and indexes if they do not exist yet
func (db *PostgresDB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", classify(err))
		}
	}
	log.Info("Schema is up to date")
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanMessage reads messageColumns, then any extra trailing columns into extra
func scanMessage(s rowScanner, extra ...interface{}) (*models.Message, error) {
	var msg models.Message
	var offerID sql.NullInt64

	dest := []interface{}{&msg.ID, &msg.SenderID, &msg.ReceiverID, &offerID, &msg.Content, &msg.CreatedAt, &msg.IsRead}
	err := s.Scan(append(dest, extra...)...)
	if err != nil {
		return nil, err
	}

	if offerID.Valid {
		ref := offerID.Int64
		msg.RequestRef = &ref
	}
	return &msg, nil
}

func (db *PostgresDB) queryMessages(ctx context.Context, query string, args ...interface{}) ([]*models.Message, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, classify(err)
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}

	return messages, nil
}

func (db *PostgresDB) Append(ctx context.Context, in models.NewMessage) (*models.Message, error) {
	var offerID sql.NullInt64
	if in.RequestRef != nil {
		offerID = sql.NullInt64{Int64: *in.RequestRef, Valid: true}
	}

	row := db.QueryRowContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, offer_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+messageColumns,
		in.SenderID, in.ReceiverID, offerID, in.Content,
	)

	msg, err := scanMessage(row)
	if err != nil {
		return nil, classify(err)
	}
	return msg, nil
}

func (db *PostgresDB) ListByParticipant(ctx context.Context, self int64) ([]*models.Message, error) {
	return db.queryMessages(ctx,
		`SELECT `+messageColumns+`
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1`,
		self,
	)
}

func (db *PostgresDB) ListBetween(ctx context.Context, self, counterpart int64) ([]*models.Message, error) {
	return db.queryMessages(ctx,
		`SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC, id ASC`,
		self, counterpart,
	)
}

func (db *PostgresDB) MarkReadReceivedFrom(ctx context.Context, self, counterpart int64) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE messages
		SET is_read = true
		WHERE receiver_id = $1 AND sender_id = $2 AND is_read = false`,
		self, counterpart,
	)
	if err != nil {
		return 0, classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, classify(err)
	}
	return rowsAffected, nil
}

func (db *PostgresDB) MarkOne(ctx context.Context, messageID, self int64) (*models.Message, bool, error) {
	// prev reads the row as it was before this statement; FOR UPDATE makes a
	// concurrent mark of the same row wait and then see it already read
	row := db.QueryRowContext(ctx,
		`WITH prev AS (
			SELECT is_read FROM messages WHERE id = $1 AND receiver_id = $2 FOR UPDATE
		)
		UPDATE messages
		SET is_read = true
		WHERE id = $1 AND receiver_id = $2
		RETURNING `+messageColumns+`, NOT (SELECT is_read FROM prev)`,
		messageID, self,
	)

	var flipped bool
	msg, err := scanMessage(row, &flipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrMessageNotFound
	}
	if err != nil {
		return nil, false, classify(err)
	}
	return msg, flipped, nil
}

func (db *PostgresDB) CountUnread(ctx context.Context, self int64) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = false",
		self,
	).Scan(&count)
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

func (db *PostgresDB) GetProfiles(ctx context.Context, ids []int64) (map[int64]*models.Profile, error) {
	profiles := make(map[int64]*models.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, COALESCE(first_name, ''), COALESCE(last_name, '')
		FROM users
		WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", classify(err))
		}
		profiles[p.ID] = &p
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", classify(err))
	}
	return profiles, nil
}

func (db *PostgresDB) GetOfferTitles(ctx context.Context, ids []int64) (map[int64]string, error) {
	titles := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, title FROM offers WHERE id = ANY($1)",
		pq.Array(ids),
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan offer row: %w", classify(err))
		}
		titles[id] = title
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer rows: %w", classify(err))
	}
	return titles, nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return classify(db.PingContext(ctx))
}

func (db *PostgresDB) Close() error {
	return db.DB.Close()
}
