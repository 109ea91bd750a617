package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/modernforum/forum/internal/api/middleware"
	"github.com/modernforum/forum/internal/api/view"
	"github.com/modernforum/forum/internal/core/domain"
	"github.com/modernforum/forum/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.registerFn(ctx, username, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubSessions struct {
	started  []domain.Identity
	ended    int
	startErr error
}

func (s *stubSessions) Start(c echo.Context, id domain.Identity) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = append(s.started, id)
	middleware.SetIdentity(c, id)
	return nil
}

func (s *stubSessions) End(echo.Context) error {
	s.ended++
	return nil
}

type stubForumService struct {
	listFn   func(ctx context.Context) ([]domain.ThreadSummary, error)
	getFn    func(ctx context.Context, id string) (*domain.ThreadDetail, error)
	createFn func(ctx context.Context, in ports.CreateThreadInput) (*domain.Thread, error)
	replyFn  func(ctx context.Context, in ports.ReplyInput) (*domain.PostPayload, error)
}

func (s *stubForumService) ListRecent(ctx context.Context) ([]domain.ThreadSummary, error) {
	return s.listFn(ctx)
}

func (s *stubForumService) GetThread(ctx context.Context, id string) (*domain.ThreadDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubForumService) CreateThread(ctx context.Context, in ports.CreateThreadInput) (*domain.Thread, error) {
	return s.createFn(ctx, in)
}

func (s *stubForumService) Reply(ctx context.Context, in ports.ReplyInput) (*domain.PostPayload, error) {
	return s.replyFn(ctx, in)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.Renderer = view.MustRenderer()
	return e
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
