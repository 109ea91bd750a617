package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/modernforum/forum/internal/core/domain"
	"github.com/modernforum/forum/internal/core/ports"
)

// CookieName is the session cookie. Its value is an HS256 token whose jti is
// the server-side session id.
const CookieName = "forum.sid"

var errBadCookie = errors.New("invalid session cookie")

// Sessions ties the session store to the browser cookie.
type Sessions struct {
	store  ports.SessionStore
	secret []byte
	ttl    time.Duration
	secure bool
	log    zerolog.Logger
	now    func() time.Time
}

// NewSessions builds the session layer. secure marks cookies HTTPS-only.
func NewSessions(store ports.SessionStore, secret string, ttl time.Duration, secure bool, log zerolog.Logger) *Sessions {
	return &Sessions{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		log:    log,
		now:    time.Now,
	}
}

// Load resolves the cookie to an identity on every request. Missing,
// forged or expired cookies leave the request anonymous.
func (s *Sessions) Load() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			sid, err := s.parse(cookie.Value)
			if err != nil {
				s.clearCookie(c)
				return next(c)
			}

			sess, err := s.store.Lookup(c.Request().Context(), sid)
			switch {
			case errors.Is(err, domain.ErrSessionNotFound):
				s.clearCookie(c)
			case err != nil:
				s.log.Warn().Err(err).Str("path", c.Request().URL.Path).Msg("session lookup failed, continuing anonymously")
			default:
				SetIdentity(c, sess.Identity())
				c.Set(sessionIDKey, sid)
			}
			return next(c)
		}
	}
}

// Start opens a session for identity and sets the cookie.
func (s *Sessions) Start(c echo.Context, identity domain.Identity) error {
	sess, err := s.store.Create(c.Request().Context(), identity)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	value, err := s.sign(sess.Token, sess.ExpiresAt)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	c.SetCookie(s.cookie(value, int(s.ttl.Seconds())))
	SetIdentity(c, identity)
	c.Set(sessionIDKey, sess.Token)
	return nil
}

// End revokes the current session, if any, and expires the cookie.
func (s *Sessions) End(c echo.Context) error {
	sid, _ := c.Get(sessionIDKey).(string)
	if sid == "" {
		if cookie, err := c.Cookie(CookieName); err == nil {
			sid, _ = s.parse(cookie.Value)
		}
	}
	s.clearCookie(c)
	c.Set(identityKey, nil)

	if sid == "" {
		return nil
	}
	if err := s.store.Revoke(c.Request().Context(), sid); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (s *Sessions) sign(sid string, expires time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sid,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Sessions) parse(value string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", errBadCookie
	}
	if claims.ID == "" {
		return "", errBadCookie
	}
	return claims.ID, nil
}

func (s *Sessions) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Sessions) clearCookie(c echo.Context) {
	c.SetCookie(s.cookie("", -1))
}
