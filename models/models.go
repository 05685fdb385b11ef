package models

type User struct {
	ID       int64
	Login    string
	Password string // opaque hash supplied by the client, stored as-is
	Nickname string
}

type Chat struct {
	ID   int64
	Name string
	Type string // "personal" or "group"
}

type ChatParticipant struct {
	ChatID int64
	UserID int64
}

type Message struct {
	ID        int64
	ChatID    int64
	SenderID  int64
	Text      string
	Timestamp string
}

// ChatSummary is one entry of a user's chat list. DisplayName is the other
// participant's nickname for personal chats and the chat name for group chats.
type ChatSummary struct {
	ChatID      int64
	DisplayName string
	Type        string
	UnreadCount int
}

// HistoryItem is one entry of a chat history with the sender resolved to a login.
type HistoryItem struct {
	SenderLogin string
	Text        string
	Timestamp   string
}

// FoundUser is a single user search result.
type FoundUser struct {
	Login    string
	Nickname string
}
