package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/pbkdf2"

	"talkd/db"
	"talkd/logger"
	"talkd/models"
)

// DefaultNickname is assigned on registration and rejected as a nickname update.
const DefaultNickname = "New user"

var loginPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Auth owns credential registration, lookup and updates.
//
// Passwords travel as opaque client-computed hashes and are compared
// byte-for-byte; the server never hashes a plaintext itself. The single
// exception is login renaming, which verifies and re-stores the credential
// through saltedHash with the login as salt. The inconsistency is part of the
// wire contract with existing clients and must not be unified here.
type Auth struct {
	db    *db.DB
	audit logger.Audit
}

func NewAuth(database *db.DB, audit logger.Audit) *Auth {
	return &Auth{db: database, audit: audit}
}

func (a *Auth) Register(login, passwordHash string) error {
	if !loginPattern.MatchString(login) {
		return ErrInvalidLogin
	}

	_, err := a.db.CreateUser(login, passwordHash, DefaultNickname)
	if errors.Is(err, db.ErrAlreadyExists) {
		return ErrLoginTaken
	}
	if err != nil {
		return err
	}

	a.audit.Log(fmt.Sprintf("User '%s' registered", login))
	return nil
}

func (a *Auth) Login(login, passwordHash string) (int64, error) {
	user, err := a.db.GetUserByLogin(login)
	if errors.Is(err, db.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	if user.Password != passwordHash {
		return 0, ErrWrongCredential
	}

	a.audit.Log(fmt.Sprintf("User '%s' logged in", login))
	return user.ID, nil
}

func (a *Auth) Nickname(login string) (string, error) {
	user, err := a.db.GetUserByLogin(login)
	if errors.Is(err, db.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return user.Nickname, nil
}

func (a *Auth) UpdateNickname(login, nickname string) error {
	if nickname == "" || nickname == DefaultNickname {
		return ErrInvalidNickname
	}

	err := a.db.UpdateNickname(login, nickname)
	if errors.Is(err, db.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

// UpdateLogin renames an account. The supplied credential is verified against
// the stored hash after salting with the old login, then stored re-salted
// with the new login; both fields change in one statement.
func (a *Auth) UpdateLogin(oldLogin, newLogin, credential string) error {
	if !loginPattern.MatchString(newLogin) {
		return ErrInvalidLogin
	}

	user, err := a.db.GetUserByLogin(oldLogin)
	if errors.Is(err, db.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if saltedHash(credential, oldLogin) != user.Password {
		return ErrWrongCredential
	}

	err = a.db.RenameUser(oldLogin, newLogin, saltedHash(credential, newLogin))
	if errors.Is(err, db.ErrAlreadyExists) {
		return ErrInvalidLogin
	}
	if err != nil {
		return err
	}

	a.audit.Log(fmt.Sprintf("User '%s' renamed to '%s'", oldLogin, newLogin))
	return nil
}

func (a *Auth) UpdatePassword(login, currentHash, newHash string) error {
	user, err := a.db.GetUserByLogin(login)
	if errors.Is(err, db.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if user.Password != currentHash {
		return ErrWrongCredential
	}

	return a.db.UpdatePassword(login, newHash)
}

func (a *Auth) FindUsers(searchText, excludingLogin string) ([]models.FoundUser, error) {
	return a.db.SearchUsers(searchText, excludingLogin)
}

// saltedHash derives the stored credential form used by renamed accounts:
// PBKDF2-SHA256 over the client hash with the login string as salt. The
// derivation is deterministic so the client can recompute the same value for
// later logins.
func saltedHash(credential, login string) string {
	key := pbkdf2.Key([]byte(credential), []byte(login), 4096, 32, sha256.New)
	return hex.EncodeToString(key)
}

// SaltCredential is the exported form of the rename derivation, for clients
// and tests that need to produce wire-compatible credentials.
func SaltCredential(credential, login string) string {
	return saltedHash(credential, login)
}
