package db

import (
	"database/sql"

	"talkd/models"
)

// Chat methods

func (db *DB) GetChatByName(name string) (*models.Chat, error) {
	var c models.Chat
	err := db.conn.QueryRow(
		"SELECT id, name, type FROM chats WHERE name = ?",
		name,
	).Scan(&c.ID, &c.Name, &c.Type)
	if err == sql.ErrNoRows {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreatePersonalChat resolves a personal chat for the pair inside one
// immediate transaction: both key orders are checked under the write lock, so
// two connections racing for the same pair converge on a single chat row.
func (db *DB) GetOrCreatePersonalChat(nameAB, nameBA string, userA, userB int64) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, name := range []string{nameAB, nameBA} {
		var id int64
		err := tx.QueryRow("SELECT id FROM chats WHERE name = ?", name).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, err
		}
	}

	result, err := tx.Exec("INSERT INTO chats (name, type) VALUES (?, 'personal')", nameAB)
	if err != nil {
		return 0, constraintErr(err)
	}

	chatID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	participants := []int64{userA, userB}
	if userA == userB {
		participants = participants[:1]
	}
	for _, userID := range participants {
		if _, err := tx.Exec(
			"INSERT INTO chat_participants (chat_id, user_id) VALUES (?, ?)",
			chatID, userID,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return chatID, nil
}

// CreateGroupChat inserts a group chat with the creator as sole participant.
// Name collisions with any existing chat surface as ErrAlreadyExists.
func (db *DB) CreateGroupChat(name string, creatorID int64) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec("INSERT INTO chats (name, type) VALUES (?, 'group')", name)
	if err != nil {
		return 0, constraintErr(err)
	}

	chatID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(
		"INSERT INTO chat_participants (chat_id, user_id) VALUES (?, ?)",
		chatID, creatorID,
	); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return chatID, nil
}

// DeleteChat removes the chat row; participants, messages and read statuses
// go with it through ON DELETE CASCADE.
func (db *DB) DeleteChat(chatID int64) error {
	result, err := db.conn.Exec("DELETE FROM chats WHERE id = ?", chatID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNoRows
	}

	return nil
}

func (db *DB) GetParticipants(chatID int64) ([]models.ChatParticipant, error) {
	rows, err := db.conn.Query(
		"SELECT chat_id, user_id FROM chat_participants WHERE chat_id = ?",
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.ChatParticipant
	for rows.Next() {
		var p models.ChatParticipant
		if err := rows.Scan(&p.ChatID, &p.UserID); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// ListChats returns every chat the user participates in, with the display
// name resolved per chat type and the count of messages from other
// participants that have no read_status row for this user.
func (db *DB) ListChats(login string) ([]models.ChatSummary, error) {
	query := `
		SELECT c.id, c.type,
			CASE WHEN c.type = 'personal'
				THEN COALESCE((
					SELECT u2.nickname
					FROM chat_participants p2
					JOIN users u2 ON u2.id = p2.user_id
					WHERE p2.chat_id = c.id AND p2.user_id <> u.id
					LIMIT 1
				), c.name)
				ELSE c.name
			END,
			(
				SELECT COUNT(*)
				FROM messages m
				WHERE m.chat_id = c.id AND m.sender_id <> u.id
					AND NOT EXISTS (
						SELECT 1 FROM read_status r
						WHERE r.message_id = m.id AND r.user_id = u.id
					)
			)
		FROM chats c
		JOIN chat_participants p ON p.chat_id = c.id
		JOIN users u ON u.id = p.user_id
		WHERE u.login = ?
		ORDER BY c.id
	`

	rows, err := db.conn.Query(query, login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.ChatSummary
	for rows.Next() {
		var c models.ChatSummary
		if err := rows.Scan(&c.ChatID, &c.Type, &c.DisplayName, &c.UnreadCount); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}

	return chats, rows.Err()
}
