package db

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNoRows is returned when a lookup matches nothing.
	ErrNoRows = errors.New("no rows found")
	// ErrAlreadyExists is returned when an insert hits a UNIQUE constraint.
	ErrAlreadyExists = errors.New("already exists")
)

type DB struct {
	conn *sql.DB
}

// New opens (or creates) the sqlite database at path and initializes the
// schema. Transactions are opened immediate so that concurrent get-or-create
// callers serialize on the write lock instead of racing check-then-insert.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=1&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			login TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			nickname TEXT NOT NULL DEFAULT 'New user'
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('personal', 'group'))
		)`,
		`CREATE TABLE IF NOT EXISTS chat_participants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id),
			UNIQUE(chat_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			sender_id INTEGER NOT NULL REFERENCES users(id),
			text TEXT NOT NULL,
			timestamp TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS read_status (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id INTEGER NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id),
			read_at TEXT NOT NULL,
			UNIQUE(message_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_user ON chat_participants(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_read_status_user ON read_status(user_id)`,
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// constraintErr maps sqlite UNIQUE violations onto ErrAlreadyExists.
func constraintErr(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrAlreadyExists
	}
	return err
}
