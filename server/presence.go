package server

import (
	"log"
	"sync"
	"time"

	"talkd/protocol"
)

// Registry maps authenticated user ids to the session able to receive pushes.
// It lives for the life of the server process: entries appear on successful
// login, disappear one by one on disconnect and wholesale on shutdown.
// A second login for the same user silently displaces the previous session.
type Registry struct {
	mu           sync.RWMutex
	sessions     map[int64]*Session
	writeTimeout time.Duration
}

func NewRegistry(writeTimeout time.Duration) *Registry {
	return &Registry{
		sessions:     make(map[int64]*Session),
		writeTimeout: writeTimeout,
	}
}

func (r *Registry) Bind(userID int64, session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = session
}

// Unbind removes every entry pointing at the session. Linear scan: the
// registry holds one entry per online user.
func (r *Registry) Unbind(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, s := range r.sessions {
		if s == session {
			delete(r.sessions, userID)
		}
	}
}

func (r *Registry) Lookup(userID int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[userID]
	return session, ok
}

// PushMessage implements service.Pusher: it delivers a chat_update event to
// the user's bound session. A user without a session is silently skipped.
func (r *Registry) PushMessage(userID, chatID int64, senderLogin, text, timestamp string) {
	session, ok := r.Lookup(userID)
	if !ok {
		return
	}

	data, err := protocol.Encode(protocol.ChatUpdate{
		Type:        protocol.TypeChatUpdate,
		ChatID:      chatID,
		UserID:      senderLogin,
		MessageText: text,
		Timestamp:   timestamp,
	})
	if err != nil {
		return
	}

	if err := session.write(data, r.writeTimeout); err != nil {
		log.Printf("[%s] push error to %s: %v", session.ID, session.Login, err)
	}
}

// Drain removes and returns every bound session, used on shutdown.
func (r *Registry) Drain() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[int64]*Session)
	return sessions
}

// Logins returns the logins of every bound session, for the stats command.
func (r *Registry) Logins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var logins []string
	for _, s := range r.sessions {
		logins = append(logins, s.Login)
	}
	return logins
}
