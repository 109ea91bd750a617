package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/modernforum/forum/internal/api/view"
	"github.com/modernforum/forum/internal/core/domain"
	"github.com/modernforum/forum/internal/core/ports"
	"github.com/modernforum/forum/internal/pkg/metrics"
)

type ForumHandler struct {
	forum ports.ForumService
	log   zerolog.Logger
}

func NewForumHandler(forum ports.ForumService, log zerolog.Logger) *ForumHandler {
	return &ForumHandler{forum: forum, log: log}
}

// Index renders the most recently active threads.
func (h *ForumHandler) Index(c echo.Context) error {
	threads, err := h.forum.ListRecent(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.PageIndex, &view.IndexPage{Title: "Home", Threads: threads})
}

// ShowThread renders a thread and its posts. Unknown ids surface as
// domain.ErrThreadNotFound for the error handler.
func (h *ForumHandler) ShowThread(c echo.Context) error {
	detail, err := h.forum.GetThread(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.PageThread, &view.ThreadPage{Thread: detail})
}

// NewThread renders the new thread form.
func (h *ForumHandler) NewThread(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageNewThread, threadPage(nil, nil))
}

// CreateThread handles POST /threads.
func (h *ForumHandler) CreateThread(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req threadRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, view.PageNewThread, threadPage(nil, []domain.FieldError{{Msg: "Invalid form submission"}}))
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Tags = strings.TrimSpace(req.Tags)
	values := map[string]string{"title": req.Title, "tags": req.Tags, "content": req.Content}

	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, view.PageNewThread, threadPage(values, formErrors(err)))
	}

	thread, err := h.forum.CreateThread(c.Request().Context(), ports.CreateThreadInput{
		Author:  identity,
		Title:   req.Title,
		Tags:    domain.ParseTags(req.Tags),
		Content: req.Content,
	})
	if err != nil && thread != nil {
		// The thread is stored; resubmitting the form would duplicate it.
		h.log.Warn().Err(err).Str("thread_id", thread.ID).Msg("thread created without its opening post")
		return c.Redirect(http.StatusFound, "/threads/"+thread.ID)
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", identity.UserID).Msg("create thread failed")
		return c.Render(http.StatusInternalServerError, view.PageNewThread, threadPage(values, []domain.FieldError{{Msg: serverErrorMsg}}))
	}
	return c.Redirect(http.StatusFound, "/threads/"+thread.ID)
}

// Reply stores a reply and pushes it to live viewers of the thread.
//
// @Summary      Reply to a thread
// @Description  Requires a session cookie. The stored post is broadcast to every live viewer of the thread.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Thread id"
// @Param        body  body      replyRequest  true  "Reply content (plain text, markup is stripped)"
// @Success      200   {object}  replyResponse
// @Failure      400   {object}  replyResponse
// @Failure      404   {object}  replyResponse
// @Failure      500   {object}  replyResponse
// @Router       /threads/{id}/posts [post]
func (h *ForumHandler) Reply(c echo.Context) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.ReplyDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	identity, err := currentIdentity(c)
	if err != nil {
		outcome = "error"
		return err
	}

	var req replyRequest
	if err := c.Bind(&req); err != nil {
		outcome = "invalid"
		return c.JSON(http.StatusBadRequest, replyResponse{Errors: []domain.FieldError{{Msg: "Invalid request body"}}})
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := c.Validate(&req); err != nil {
		outcome = "invalid"
		return c.JSON(http.StatusBadRequest, replyResponse{Errors: formErrors(err)})
	}

	post, err := h.forum.Reply(c.Request().Context(), ports.ReplyInput{
		ThreadID: c.Param("id"),
		Author:   identity,
		Content:  req.Content,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, replyResponse{OK: true, Post: post})
	case errors.Is(err, domain.ErrThreadNotFound):
		outcome = "not_found"
		return c.JSON(http.StatusNotFound, replyResponse{Message: "Thread not found"})
	case errors.Is(err, domain.ErrEmptyContent):
		outcome = "invalid"
		return c.JSON(http.StatusBadRequest, replyResponse{Errors: []domain.FieldError{{Field: "content", Msg: "Post cannot be empty"}}})
	default:
		outcome = "error"
		h.log.Error().Err(err).
			Str("thread_id", c.Param("id")).
			Str("user_id", identity.UserID).
			Msg("reply failed")
		return c.JSON(http.StatusInternalServerError, replyResponse{Message: "Server error"})
	}
}

func threadPage(values map[string]string, errs []domain.FieldError) *view.FormPage {
	if values == nil {
		values = map[string]string{}
	}
	return &view.FormPage{Title: "New Thread", Values: values, Errors: errs}
}
