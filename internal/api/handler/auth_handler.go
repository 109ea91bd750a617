package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/modernforum/forum/internal/api/middleware"
	"github.com/modernforum/forum/internal/api/view"
	"github.com/modernforum/forum/internal/core/domain"
	"github.com/modernforum/forum/internal/core/ports"
)

type AuthHandler struct {
	auth     ports.AuthService
	sessions SessionManager
	log      zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, sessions SessionManager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, log: log}
}

// RegisterForm renders GET /register.
func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageRegister, registerPage(nil, nil))
}

// Register handles POST /register and signs the new user in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, view.PageRegister, registerPage(nil, []domain.FieldError{{Msg: "Invalid form submission"}}))
	}
	req.Username = strings.TrimSpace(req.Username)
	values := map[string]string{"username": req.Username}

	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, view.PageRegister, registerPage(values, formErrors(err)))
	}

	user, err := h.auth.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return c.Render(http.StatusBadRequest, view.PageRegister, registerPage(values, []domain.FieldError{{Field: "username", Msg: "Username already taken"}}))
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("register failed")
		return c.Render(http.StatusInternalServerError, view.PageRegister, registerPage(values, []domain.FieldError{{Msg: serverErrorMsg}}))
	}

	if err := h.sessions.Start(c, domain.Identity{UserID: user.ID, Username: user.Username}); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("start session after register")
		return c.Render(http.StatusInternalServerError, view.PageRegister, registerPage(values, []domain.FieldError{{Msg: serverErrorMsg}}))
	}
	return c.Redirect(http.StatusFound, "/")
}

// LoginForm renders GET /login, carrying ?next= into the form.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageLogin, loginPage(nil, nil, middleware.SafeNext(c.QueryParam("next"))))
}

// Login handles POST /login and redirects to the remembered page.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, view.PageLogin, loginPage(nil, []domain.FieldError{{Msg: "Invalid form submission"}}, "/"))
	}
	req.Username = strings.TrimSpace(req.Username)
	next := middleware.SafeNext(req.Next)
	values := map[string]string{"username": req.Username}

	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, view.PageLogin, loginPage(values, formErrors(err), next))
	}

	user, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.Render(http.StatusBadRequest, view.PageLogin, loginPage(values, []domain.FieldError{{Msg: "Invalid username or password"}}, next))
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("login failed")
		return c.Render(http.StatusInternalServerError, view.PageLogin, loginPage(values, []domain.FieldError{{Msg: serverErrorMsg}}, next))
	}

	if err := h.sessions.Start(c, domain.Identity{UserID: user.ID, Username: user.Username}); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("start session after login")
		return c.Render(http.StatusInternalServerError, view.PageLogin, loginPage(values, []domain.FieldError{{Msg: serverErrorMsg}}, next))
	}
	return c.Redirect(http.StatusFound, next)
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.End(c); err != nil {
		h.log.Warn().Err(err).Msg("logout: revoke session")
	}
	return c.Redirect(http.StatusFound, "/")
}

func registerPage(values map[string]string, errs []domain.FieldError) *view.FormPage {
	if values == nil {
		values = map[string]string{}
	}
	return &view.FormPage{Title: "Register", Values: values, Errors: errs}
}

func loginPage(values map[string]string, errs []domain.FieldError, next string) *view.FormPage {
	if values == nil {
		values = map[string]string{}
	}
	return &view.FormPage{Title: "Login", Values: values, Errors: errs, Next: next}
}
