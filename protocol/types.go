package protocol

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Request type discriminators.
const (
	TypeRegister        = "register"
	TypeLogin           = "login"
	TypeCheckNickname   = "check_nickname"
	TypeUpdateNickname  = "update_nickname"
	TypeUpdateLogin     = "update_login"
	TypeUpdatePassword  = "update_password"
	TypeFindUsers       = "find_users"
	TypeCreateChat      = "create_chat"
	TypeGetOrCreateChat = "get_or_create_chat"
	TypeCheckChatExists = "check_chat_exists"
	TypeDeleteChat      = "delete_chat"
	TypeGetChatList     = "get_chat_list"
	TypeGetChatHistory  = "get_chat_history"
	TypeSendMessage     = "send_message"
	TypeChatUpdate      = "chat_update"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope carries the discriminator field present in every request.
type Envelope struct {
	Type string `json:"type"`
}

// ChatID accepts both numeric and string encodings: get_or_create_chat hands
// the id back as a string, and clients echo it in that form.
type ChatID int64

func (c *ChatID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*c = ChatID(n)
	return nil
}

func (c ChatID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(c), 10)), nil
}

// Requests. Field names are the wire contract; do not rename.

type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type CheckNicknameRequest struct {
	Login string `json:"login"`
}

type UpdateNicknameRequest struct {
	Login    string `json:"login"`
	Nickname string `json:"nickname"`
}

type UpdateLoginRequest struct {
	OldLogin string `json:"old_login"`
	NewLogin string `json:"new_login"`
	Password string `json:"password"`
}

type UpdatePasswordRequest struct {
	Login           string `json:"login"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type FindUsersRequest struct {
	SearchText string `json:"searchText"`
	Login      string `json:"login"`
}

type CreateChatRequest struct {
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

type GetOrCreateChatRequest struct {
	Login1 string `json:"login1"`
	Login2 string `json:"login2"`
}

type CheckChatExistsRequest struct {
	ChatName string `json:"chat_name"`
	Login    string `json:"login"`
}

type DeleteChatRequest struct {
	ChatID ChatID `json:"chat_id"`
}

type GetChatListRequest struct {
	Login string `json:"login"`
}

type GetChatHistoryRequest struct {
	ChatID ChatID `json:"chat_id"`
	Login  string `json:"login"`
}

type SendMessageRequest struct {
	ChatID      ChatID `json:"chat_id"`
	UserID      string `json:"user_id"` // author login
	MessageText string `json:"message_text"`
	Timestamp   string `json:"timestamp"`
}

// Responses.

// StatusResponse covers every plain success/error answer. Type and Message
// are omitted when empty, matching the per-request response shapes.
type StatusResponse struct {
	Type    string `json:"type,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type NicknameResponse struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	Nickname string `json:"nickname"`
}

type UserEntry struct {
	Login    string `json:"login"`
	Nickname string `json:"nickname"`
}

type FindUsersResponse struct {
	Status string      `json:"status"`
	Users  []UserEntry `json:"users"`
}

// ChatCreatedResponse answers create_chat and check_chat_exists with a
// numeric chat id.
type ChatCreatedResponse struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	ChatID int64  `json:"chat_id"`
}

// ChatResolvedResponse answers get_or_create_chat; the id travels as a string.
type ChatResolvedResponse struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	ChatID string `json:"chat_id"`
}

// ChatEntry is one element of get_chat_list. Exactly one of OtherNickname
// (personal chats) and Name (group chats) is set.
type ChatEntry struct {
	ChatID        int64  `json:"chat_id"`
	OtherNickname string `json:"other_nickname,omitempty"`
	Name          string `json:"name,omitempty"`
	ChatType      string `json:"chat_type"`
	UnreadCount   int    `json:"unread_count"`
}

type ChatListResponse struct {
	Status string      `json:"status"`
	Chats  []ChatEntry `json:"chats"`
}

type HistoryEntry struct {
	UserID      string `json:"user_id"` // sender login
	MessageText string `json:"message_text"`
	Timestamp   string `json:"timestamp"`
}

type ChatHistoryResponse struct {
	Type     string         `json:"type"`
	Messages []HistoryEntry `json:"messages"`
}

// ChatUpdate is the unsolicited push sent to online chat participants when a
// message arrives.
type ChatUpdate struct {
	Type        string `json:"type"`
	ChatID      int64  `json:"chat_id"`
	UserID      string `json:"user_id"` // sender login
	MessageText string `json:"message_text"`
	Timestamp   string `json:"timestamp"`
}

// Encode marshals a response for the wire with a trailing newline. The
// newline is cosmetic for line-oriented clients; framing relies on the JSON
// object being self-delimited.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
