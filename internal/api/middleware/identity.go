package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/modernforum/forum/internal/core/domain"
)

const (
	identityKey  = "identity"
	sessionIDKey = "session_id"
)

// IdentityFrom returns the identity the Session middleware attached, if any.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok && id.UserID != ""
}

// SetIdentity attaches an identity to the request.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
}
