package database

// schema mirrors the tables the messaging core reads. users and offers are
// owned by other services; they are created here only so a fresh database
// can run the core on its own.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		skills_offered TEXT[],
		skills_wanted TEXT[],
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS offers (
		id SERIAL PRIMARY KEY,
		user_id INTEGER REFERENCES users(id),
		title VARCHAR(255) NOT NULL,
		skills_offered TEXT[],
		description TEXT,
		screenshots TEXT[] DEFAULT '{}',
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	// clock_timestamp() rather than now() so rows inserted in one
	// transaction still get increasing timestamps
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		sender_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		offer_id INTEGER REFERENCES offers(id) ON DELETE SET NULL,
		content TEXT NOT NULL CHECK (length(btrim(content)) > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
		is_read BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_offer ON messages(offer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(receiver_id, is_read) WHERE is_read = false`,
}
