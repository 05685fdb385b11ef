package service

import (
	"errors"
	"time"

	"talkd/db"
	"talkd/logger"
	"talkd/models"
)

// Pusher delivers an unsolicited chat update to a user's live connection, if
// any. Implemented by the server's presence registry; a user without a bound
// connection is silently skipped.
type Pusher interface {
	PushMessage(userID, chatID int64, senderLogin, text, timestamp string)
}

// Messages owns message persistence, history retrieval and read tracking.
type Messages struct {
	db     *db.DB
	pusher Pusher
	audit  logger.Audit
}

func NewMessages(database *db.DB, pusher Pusher, audit logger.Audit) *Messages {
	return &Messages{db: database, pusher: pusher, audit: audit}
}

// Send persists the message and fans a chat_update out to every other
// participant currently online. An unresolvable author fails the whole call;
// nothing is stored.
func (m *Messages) Send(chatID int64, authorLogin, text, timestamp string) error {
	author, err := m.db.GetUserByLogin(authorLogin)
	if errors.Is(err, db.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	msg := models.Message{ChatID: chatID, SenderID: author.ID, Text: text, Timestamp: timestamp}
	if _, err := m.db.SaveMessage(msg); err != nil {
		return err
	}

	participants, err := m.db.GetParticipants(chatID)
	if err != nil {
		// Сообщение уже сохранено, доставка при следующем запросе истории
		return nil
	}

	for _, p := range participants {
		if p.UserID == author.ID {
			continue
		}
		m.pusher.PushMessage(p.UserID, chatID, authorLogin, text, timestamp)
	}

	return nil
}

// History returns the chat's messages in timestamp order and, as a side
// effect, marks everything not authored by the requester as read. Repeat
// calls change nothing beyond the first.
func (m *Messages) History(chatID int64, login string) ([]models.HistoryItem, error) {
	user, err := m.db.GetUserByLogin(login)
	if errors.Is(err, db.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := m.db.GetHistory(chatID)
	if err != nil {
		return nil, err
	}

	if err := m.MarkRead(chatID, user.ID); err != nil {
		return nil, err
	}

	return items, nil
}

// MarkRead records a read status for every message in the chat authored by
// someone else. First write wins; existing read timestamps are never touched.
func (m *Messages) MarkRead(chatID, userID int64) error {
	readAt := time.Now().UTC().Format(time.RFC3339)
	return m.db.MarkChatRead(chatID, userID, readAt)
}
