package db

import "talkd/models"

// Message methods

func (db *DB) SaveMessage(msg models.Message) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO messages (chat_id, sender_id, text, timestamp) VALUES (?, ?, ?, ?)",
		msg.ChatID, msg.SenderID, msg.Text, msg.Timestamp,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetHistory returns the chat's messages ordered by timestamp, insertion
// order breaking ties.
func (db *DB) GetHistory(chatID int64) ([]models.HistoryItem, error) {
	query := `
		SELECT u.login, m.text, m.timestamp
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.chat_id = ?
		ORDER BY m.timestamp ASC, m.id ASC
	`

	rows, err := db.conn.Query(query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.HistoryItem
	for rows.Next() {
		var item models.HistoryItem
		if err := rows.Scan(&item.SenderLogin, &item.Text, &item.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// MarkChatRead records a read status for every message in the chat authored
// by someone else. INSERT OR IGNORE keeps the first read_at: marking an
// already-read message is a no-op.
func (db *DB) MarkChatRead(chatID, userID int64, readAt string) error {
	_, err := db.conn.Exec(
		`INSERT OR IGNORE INTO read_status (message_id, user_id, read_at)
		SELECT m.id, ?, ? FROM messages m
		WHERE m.chat_id = ? AND m.sender_id <> ?`,
		userID, readAt, chatID, userID,
	)
	return err
}

// UnreadCount counts the chat's messages from other senders with no
// read_status row for the user.
func (db *DB) UnreadCount(chatID, userID int64) (int, error) {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM messages m
		WHERE m.chat_id = ? AND m.sender_id <> ?
			AND NOT EXISTS (
				SELECT 1 FROM read_status r
				WHERE r.message_id = m.id AND r.user_id = ?
			)`,
		chatID, userID, userID,
	).Scan(&count)
	return count, err
}
