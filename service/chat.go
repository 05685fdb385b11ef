package service

import (
	"errors"
	"fmt"

	"talkd/db"
	"talkd/logger"
	"talkd/models"
)

// Chats owns chat creation, lookup and membership.
type Chats struct {
	db    *db.DB
	audit logger.Audit
}

func NewChats(database *db.DB, audit logger.Audit) *Chats {
	return &Chats{db: database, audit: audit}
}

// GetOrCreatePersonal returns the personal chat for the pair, creating it on
// first contact. The chat key is the concatenation of the two logins; both
// orders are treated as the same chat, so callers with swapped arguments
// converge on one id.
func (c *Chats) GetOrCreatePersonal(loginA, loginB string) (int64, error) {
	userA, err := c.db.GetUserByLogin(loginA)
	if errors.Is(err, db.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	userB, err := c.db.GetUserByLogin(loginB)
	if errors.Is(err, db.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	chatID, err := c.db.GetOrCreatePersonalChat(loginA+loginB, loginB+loginA, userA.ID, userB.ID)
	if errors.Is(err, db.ErrAlreadyExists) {
		// Проигравший гонку забирает чат победителя
		chat, err := c.db.GetChatByName(loginA + loginB)
		if err != nil {
			return 0, err
		}
		return chat.ID, nil
	}
	if err != nil {
		return 0, err
	}

	return chatID, nil
}

// CreateGroup creates a group chat with the creator as its only participant.
// The name is unique across chats of both types.
func (c *Chats) CreateGroup(name, creatorLogin string) (int64, error) {
	creator, err := c.db.GetUserByLogin(creatorLogin)
	if errors.Is(err, db.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	chatID, err := c.db.CreateGroupChat(name, creator.ID)
	if errors.Is(err, db.ErrAlreadyExists) {
		return 0, ErrChatNameTaken
	}
	if err != nil {
		return 0, err
	}

	c.audit.Log(fmt.Sprintf("Chat '%s' created by '%s'", name, creatorLogin))
	return chatID, nil
}

func (c *Chats) Delete(chatID int64) error {
	err := c.db.DeleteChat(chatID)
	if errors.Is(err, db.ErrNoRows) {
		return ErrChatNotFound
	}
	if err != nil {
		return err
	}

	c.audit.Log(fmt.Sprintf("Chat %d deleted", chatID))
	return nil
}

func (c *Chats) List(login string) ([]models.ChatSummary, error) {
	return c.db.ListChats(login)
}
