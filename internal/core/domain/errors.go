package domain

import "errors"

var (
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrThreadNotFound     = errors.New("thread not found")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrEmptyContent       = errors.New("post cannot be empty")
)

// FieldError describes one rejected input field in a user facing way.
type FieldError struct {
	Field string `json:"field,omitempty"`
	Msg   string `json:"msg"`
}
