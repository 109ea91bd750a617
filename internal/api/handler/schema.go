package handler

import "github.com/modernforum/forum/internal/core/domain"

type registerRequest struct {
	Username string `form:"username" json:"username" validate:"min=3,max=32,username"`
	Password string `form:"password" json:"password" validate:"min=6"`
}

type loginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
	Next     string `form:"next" json:"next"`
}

type threadRequest struct {
	Title   string `form:"title" json:"title" validate:"min=3,max=200"`
	Tags    string `form:"tags" json:"tags" validate:"max=100"`
	Content string `form:"content" json:"content" validate:"max=5000"`
}

// replyRequest is the body of POST /threads/{id}/posts.
type replyRequest struct {
	Content string `form:"content" json:"content" validate:"required,max=5000" example:"Thanks, that fixed it!"`
}

// replyResponse is the JSON envelope of the reply endpoint. Exactly one of
// Post, Errors and Message is set.
type replyResponse struct {
	OK      bool                `json:"ok"`
	Post    *domain.PostPayload `json:"post,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}
