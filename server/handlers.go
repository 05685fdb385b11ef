package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"talkd/protocol"
	"talkd/service"
)

func (s *Server) handleRegister(session *Session, frame []byte) {
	var req protocol.RegisterRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.Login == "" || req.Password == "" {
		s.respondError(session, protocol.TypeRegister, "Invalid register request")
		return
	}

	err := s.auth.Register(req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidLogin):
		s.respondError(session, protocol.TypeRegister, "Login contains invalid characters")
	case errors.Is(err, service.ErrLoginTaken):
		s.respondError(session, protocol.TypeRegister, "Login already taken")
	case err != nil:
		log.Printf("[%s] register error: %v", session.ID, err)
		s.respondError(session, protocol.TypeRegister, "Internal server error")
	default:
		s.respond(session, protocol.StatusResponse{Status: protocol.StatusSuccess})
	}
}

func (s *Server) handleLogin(session *Session, frame []byte) {
	var req protocol.LoginRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.Login == "" || req.Password == "" {
		s.respondError(session, protocol.TypeLogin, "Invalid login request")
		return
	}

	userID, err := s.auth.Login(req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		s.respondError(session, protocol.TypeLogin, "User not found")
	case errors.Is(err, service.ErrWrongCredential):
		s.respondError(session, protocol.TypeLogin, "Wrong password")
	case err != nil:
		log.Printf("[%s] login error: %v", session.ID, err)
		s.respondError(session, protocol.TypeLogin, "Internal server error")
	default:
		// Сессия становится аутентифицированной и получает push-события.
		// Повторный login на том же соединении снимает старую привязку.
		s.registry.Unbind(session)
		session.Login = req.Login
		session.UserID = userID
		s.registry.Bind(userID, session)
		s.respond(session, protocol.StatusResponse{Status: protocol.StatusSuccess})
	}
}

func (s *Server) handleCheckNickname(session *Session, frame []byte) {
	var req protocol.CheckNicknameRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.Login == "" {
		s.respondError(session, protocol.TypeCheckNickname, "Invalid request")
		return
	}

	nickname, err := s.auth.Nickname(req.Login)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		s.respondError(session, protocol.TypeCheckNickname, "User not found")
	case err != nil:
		log.Printf("[%s] check_nickname error: %v", session.ID, err)
		s.respondError(session, protocol.TypeCheckNickname, "Internal server error")
	default:
		s.respond(session, protocol.NicknameResponse{
			Type:     protocol.TypeCheckNickname,
			Status:   protocol.StatusSuccess,
			Nickname: nickname,
		})
	}
}

func (s *Server) handleUpdateNickname(session *Session, frame []byte) {
	var req protocol.UpdateNicknameRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.Login == "" {
		s.respondError(session, protocol.TypeUpdateNickname, "Invalid request")
		return
	}

	err := s.auth.UpdateNickname(req.Login, req.Nickname)
	switch {
	case errors.Is(err, service.ErrInvalidNickname):
		s.respondError(session, protocol.TypeUpdateNickname, "Invalid nickname")
	case errors.Is(err, service.ErrUserNotFound):
		s.respondError(session, protocol.TypeUpdateNickname, "User not found")
	case err != nil:
		log.Printf("[%s] update_nickname error: %v", session.ID, err)
		s.respondError(session, protocol.TypeUpdateNickname, "Internal server error")
	default:
		s.respond(session, protocol.StatusResponse{
			Type:    protocol.TypeUpdateNickname,
			Status:  protocol.StatusSuccess,
			Message: "Nickname updated",
		})
	}
}

func (s *Server) handleUpdateLogin(session *Session, frame []byte) {
	var req protocol.UpdateLoginRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.OldLogin == "" || req.NewLogin == "" || req.Password == "" {
		s.respondError(session, protocol.TypeUpdateLogin, "Invalid request")
		return
	}

	err := s.auth.UpdateLogin(req.OldLogin, req.NewLogin, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidLogin):
		s.respondError(session, protocol.TypeUpdateLogin, "New login is invalid or already taken")
	case errors.Is(err, service.ErrUserNotFound):
		s.respondError(session, protocol.TypeUpdateLogin, "User not found")
	case errors.Is(err, service.ErrWrongCredential):
		s.respondError(session, protocol.TypeUpdateLogin, "Wrong password")
	case err != nil:
		log.Printf("[%s] update_login error: %v", session.ID, err)
		s.respondError(session, protocol.TypeUpdateLogin, "Internal server error")
	default:
		if session.Login == req.OldLogin {
			session.Login = req.NewLogin
		}
		s.respond(session, protocol.StatusResponse{
			Type:    protocol.TypeUpdateLogin,
			Status:  protocol.StatusSuccess,
			Message: "Login updated",
		})
	}
}

func (s *Server) handleUpdatePassword(session *Session, frame []byte) {
	var req protocol.UpdatePasswordRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.Login == "" || req.CurrentPassword == "" || req.NewPassword == "" {
		s.respondError(session, protocol.TypeUpdatePassword, "Invalid request")
		return
	}

	err := s.auth.UpdatePassword(req.Login, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		s.respondError(session, protocol.TypeUpdatePassword, "User not found")
	case errors.Is(err, service.ErrWrongCredential):
		s.respondError(session, protocol.TypeUpdatePassword, "Wrong password")
	case err != nil:
		log.Printf("[%s] update_password error: %v", session.ID, err)
		s.respondError(session, protocol.TypeUpdatePassword, "Internal server error")
	default:
		s.respond(session, protocol.StatusResponse{
			Type:    protocol.TypeUpdatePassword,
			Status:  protocol.StatusSuccess,
			Message: "Password updated",
		})
	}
}

func (s *Server) handleFindUsers(session *Session, frame []byte) {
	var req protocol.FindUsersRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.Login == "" || req.SearchText == "" {
		s.respondError(session, protocol.TypeFindUsers, "Invalid request")
		return
	}

	found, err := s.auth.FindUsers(req.SearchText, req.Login)
	if err != nil {
		log.Printf("[%s] find_users error: %v", session.ID, err)
		s.respondError(session, protocol.TypeFindUsers, "Internal server error")
		return
	}

	users := make([]protocol.UserEntry, 0, len(found))
	for _, u := range found {
		users = append(users, protocol.UserEntry{Login: u.Login, Nickname: u.Nickname})
	}

	s.respond(session, protocol.FindUsersResponse{
		Status: protocol.StatusSuccess,
		Users:  users,
	})
}

func (s *Server) handleCreateChat(session *Session, frame []byte) {
	var req protocol.CreateChatRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.User1 == "" || req.User2 == "" {
		s.respondError(session, protocol.TypeCreateChat, "Invalid request")
		return
	}

	chatID, err := s.chats.GetOrCreatePersonal(req.User1, req.User2)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		s.respondError(session, protocol.TypeCreateChat, "User not found")
	case err != nil:
		log.Printf("[%s] create_chat error: %v", session.ID, err)
		s.respondError(session, protocol.TypeCreateChat, "Internal server error")
	default:
		s.respond(session, protocol.ChatCreatedResponse{
			Type:   protocol.TypeCreateChat,
			Status: protocol.StatusSuccess,
			ChatID: chatID,
		})
	}
}

func (s *Server) handleGetOrCreateChat(session *Session, frame []byte) {
	var req protocol.GetOrCreateChatRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.Login1 == "" || req.Login2 == "" {
		s.respondError(session, protocol.TypeGetOrCreateChat, "Invalid request")
		return
	}

	chatID, err := s.chats.GetOrCreatePersonal(req.Login1, req.Login2)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		s.respondError(session, protocol.TypeGetOrCreateChat, "User not found")
	case err != nil:
		log.Printf("[%s] get_or_create_chat error: %v", session.ID, err)
		s.respondError(session, protocol.TypeGetOrCreateChat, "Internal server error")
	default:
		// chat_id отдается строкой — так его ждет клиент
		s.respond(session, protocol.ChatResolvedResponse{
			Type:   protocol.TypeGetOrCreateChat,
			Status: protocol.StatusSuccess,
			ChatID: strconv.FormatInt(chatID, 10),
		})
	}
}

func (s *Server) handleCheckChatExists(session *Session, frame []byte) {
	var req protocol.CheckChatExistsRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.ChatName == "" || req.Login == "" {
		s.respondError(session, protocol.TypeCheckChatExists, "Invalid request")
		return
	}

	chatID, err := s.chats.CreateGroup(req.ChatName, req.Login)
	switch {
	case errors.Is(err, service.ErrChatNameTaken):
		s.respondError(session, protocol.TypeCheckChatExists, "Chat name already taken")
	case errors.Is(err, service.ErrUserNotFound):
		s.respondError(session, protocol.TypeCheckChatExists, "User not found")
	case err != nil:
		log.Printf("[%s] check_chat_exists error: %v", session.ID, err)
		s.respondError(session, protocol.TypeCheckChatExists, "Internal server error")
	default:
		s.respond(session, protocol.ChatCreatedResponse{
			Type:   protocol.TypeCheckChatExists,
			Status: protocol.StatusSuccess,
			ChatID: chatID,
		})
	}
}

func (s *Server) handleDeleteChat(session *Session, frame []byte) {
	var req protocol.DeleteChatRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.ChatID == 0 {
		s.respondError(session, protocol.TypeDeleteChat, "Invalid request")
		return
	}

	err := s.chats.Delete(int64(req.ChatID))
	switch {
	case errors.Is(err, service.ErrChatNotFound):
		s.respondError(session, protocol.TypeDeleteChat, "Chat not found")
	case err != nil:
		log.Printf("[%s] delete_chat error: %v", session.ID, err)
		s.respondError(session, protocol.TypeDeleteChat, "Internal server error")
	default:
		s.respond(session, protocol.StatusResponse{
			Type:    protocol.TypeDeleteChat,
			Status:  protocol.StatusSuccess,
			Message: fmt.Sprintf("Chat %d deleted", req.ChatID),
		})
	}
}

func (s *Server) handleGetChatList(session *Session, frame []byte) {
	var req protocol.GetChatListRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.Login == "" {
		s.respondError(session, protocol.TypeGetChatList, "Invalid request")
		return
	}

	summaries, err := s.chats.List(req.Login)
	if err != nil {
		log.Printf("[%s] get_chat_list error: %v", session.ID, err)
		s.respondError(session, protocol.TypeGetChatList, "Internal server error")
		return
	}

	chats := make([]protocol.ChatEntry, 0, len(summaries))
	for _, c := range summaries {
		entry := protocol.ChatEntry{
			ChatID:      c.ChatID,
			ChatType:    c.Type,
			UnreadCount: c.UnreadCount,
		}
		if c.Type == "personal" {
			entry.OtherNickname = c.DisplayName
		} else {
			entry.Name = c.DisplayName
		}
		chats = append(chats, entry)
	}

	s.respond(session, protocol.ChatListResponse{
		Status: protocol.StatusSuccess,
		Chats:  chats,
	})
}

func (s *Server) handleGetChatHistory(session *Session, frame []byte) {
	var req protocol.GetChatHistoryRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.ChatID == 0 || req.Login == "" {
		s.respondError(session, protocol.TypeGetChatHistory, "Invalid request")
		return
	}

	items, err := s.messages.History(int64(req.ChatID), req.Login)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		s.respondError(session, protocol.TypeGetChatHistory, "User not found")
	case err != nil:
		log.Printf("[%s] get_chat_history error: %v", session.ID, err)
		s.respondError(session, protocol.TypeGetChatHistory, "Internal server error")
	default:
		messages := make([]protocol.HistoryEntry, 0, len(items))
		for _, item := range items {
			messages = append(messages, protocol.HistoryEntry{
				UserID:      item.SenderLogin,
				MessageText: item.Text,
				Timestamp:   item.Timestamp,
			})
		}
		s.respond(session, protocol.ChatHistoryResponse{
			Type:     protocol.TypeGetChatHistory,
			Messages: messages,
		})
	}
}

func (s *Server) handleSendMessage(session *Session, frame []byte) {
	var req protocol.SendMessageRequest
	if err := json.Unmarshal(frame, &req); err != nil || req.ChatID == 0 || req.UserID == "" || req.MessageText == "" || req.Timestamp == "" {
		s.respondError(session, protocol.TypeSendMessage, "Invalid request")
		return
	}

	err := s.messages.Send(int64(req.ChatID), req.UserID, req.MessageText, req.Timestamp)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		s.respondError(session, protocol.TypeSendMessage, "Sender not found")
	case err != nil:
		log.Printf("[%s] send_message error: %v", session.ID, err)
		s.respondError(session, protocol.TypeSendMessage, "Internal server error")
	default:
		s.respond(session, protocol.StatusResponse{
			Type:   protocol.TypeSendMessage,
			Status: protocol.StatusSuccess,
		})
	}
}

func (s *Server) respondError(session *Session, reqType, message string) {
	s.respond(session, protocol.StatusResponse{
		Type:    reqType,
		Status:  protocol.StatusError,
		Message: message,
	})
}
