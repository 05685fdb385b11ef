package service

import "errors"

var (
	ErrInvalidLogin    = errors.New("invalid login")
	ErrLoginTaken      = errors.New("login already taken")
	ErrUserNotFound    = errors.New("user not found")
	ErrWrongCredential = errors.New("wrong password")
	ErrInvalidNickname = errors.New("invalid nickname")
	ErrChatNameTaken   = errors.New("chat name already taken")
	ErrChatNotFound    = errors.New("chat not found")
)
