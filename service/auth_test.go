package service

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkd/db"
	"talkd/logger"
)

func newTestStore(t *testing.T) *db.DB {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "talkd-test-*.db")
	require.NoError(t, err)
	tmpfile.Close()
	os.Remove(tmpfile.Name())

	database, err := db.New(tmpfile.Name())
	require.NoError(t, err)

	t.Cleanup(func() {
		database.Close()
		os.Remove(tmpfile.Name())
	})

	return database
}

func TestRegisterValidation(t *testing.T) {
	auth := NewAuth(newTestStore(t), logger.Nop{})

	assert.ErrorIs(t, auth.Register("bad login!", "h1"), ErrInvalidLogin)
	assert.ErrorIs(t, auth.Register("плохой", "h1"), ErrInvalidLogin)

	require.NoError(t, auth.Register("good_login-1", "h1"))
	assert.ErrorIs(t, auth.Register("good_login-1", "h2"), ErrLoginTaken)
}

func TestLoginRoundTrip(t *testing.T) {
	auth := NewAuth(newTestStore(t), logger.Nop{})

	require.NoError(t, auth.Register("alice", "h1"))

	userID, err := auth.Login("alice", "h1")
	require.NoError(t, err)
	assert.NotZero(t, userID)

	// Сравнение хэша побайтовое, с учетом регистра
	_, err = auth.Login("alice", "H1")
	assert.ErrorIs(t, err, ErrWrongCredential)

	_, err = auth.Login("nobody", "h1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNicknameRules(t *testing.T) {
	auth := NewAuth(newTestStore(t), logger.Nop{})

	require.NoError(t, auth.Register("alice", "h1"))

	nickname, err := auth.Nickname("alice")
	require.NoError(t, err)
	assert.Equal(t, DefaultNickname, nickname)

	assert.ErrorIs(t, auth.UpdateNickname("alice", ""), ErrInvalidNickname)
	assert.ErrorIs(t, auth.UpdateNickname("alice", DefaultNickname), ErrInvalidNickname)

	require.NoError(t, auth.UpdateNickname("alice", "Wonderland"))
	nickname, err = auth.Nickname("alice")
	require.NoError(t, err)
	assert.Equal(t, "Wonderland", nickname)
}

func TestUpdateLoginRehashesCredential(t *testing.T) {
	auth := NewAuth(newTestStore(t), logger.Nop{})

	// Клиент переименовываемого аккаунта хранит пароль в солёной форме:
	// хэш на проводе — производная от логина
	require.NoError(t, auth.Register("alice", SaltCredential("secret", "alice")))

	_, err := auth.Login("alice", SaltCredential("secret", "alice"))
	require.NoError(t, err)

	assert.ErrorIs(t, auth.UpdateLogin("alice", "alicia", "wrong"), ErrWrongCredential)
	assert.ErrorIs(t, auth.UpdateLogin("alice", "bad login!", "secret"), ErrInvalidLogin)

	require.NoError(t, auth.UpdateLogin("alice", "alicia", "secret"))

	// Старый логин мертв, новый работает с пересолённым хэшем
	_, err = auth.Login("alice", SaltCredential("secret", "alice"))
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = auth.Login("alicia", SaltCredential("secret", "alice"))
	assert.ErrorIs(t, err, ErrWrongCredential)

	_, err = auth.Login("alicia", SaltCredential("secret", "alicia"))
	require.NoError(t, err)
}

func TestUpdateLoginTaken(t *testing.T) {
	auth := NewAuth(newTestStore(t), logger.Nop{})

	require.NoError(t, auth.Register("alice", SaltCredential("secret", "alice")))
	require.NoError(t, auth.Register("bob", "h2"))

	assert.ErrorIs(t, auth.UpdateLogin("alice", "bob", "secret"), ErrInvalidLogin)
}

func TestUpdatePassword(t *testing.T) {
	auth := NewAuth(newTestStore(t), logger.Nop{})

	require.NoError(t, auth.Register("alice", "h1"))

	assert.ErrorIs(t, auth.UpdatePassword("alice", "wrong", "h2"), ErrWrongCredential)
	require.NoError(t, auth.UpdatePassword("alice", "h1", "h2"))

	_, err := auth.Login("alice", "h1")
	assert.ErrorIs(t, err, ErrWrongCredential)
	_, err = auth.Login("alice", "h2")
	require.NoError(t, err)
}

func TestFindUsersExcludesRequester(t *testing.T) {
	database := newTestStore(t)
	auth := NewAuth(database, logger.Nop{})

	require.NoError(t, auth.Register("alice", "h"))
	require.NoError(t, auth.UpdateNickname("alice", "Wonder Alice"))
	require.NoError(t, auth.Register("bob", "h"))
	require.NoError(t, auth.UpdateNickname("bob", "wonder bob"))

	found, err := auth.FindUsers("wonder", "alice")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bob", found[0].Login)
	assert.Equal(t, "wonder bob", found[0].Nickname)
}
