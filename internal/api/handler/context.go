package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/modernforum/forum/internal/api/middleware"
	"github.com/modernforum/forum/internal/core/domain"
)

const serverErrorMsg = "Server error. Please try again."

// SessionManager opens and closes browser sessions.
type SessionManager interface {
	Start(c echo.Context, identity domain.Identity) error
	End(c echo.Context) error
}

// currentIdentity fails fast when a protected handler is reached without a
// signed-in user, which only happens if RequireLogin was not mounted.
func currentIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return id, nil
}

// formErrors extracts field errors from a validation failure.
func formErrors(err error) []domain.FieldError {
	if ve, ok := err.(ValidationErrors); ok {
		return ve
	}
	return []domain.FieldError{{Msg: err.Error()}}
}
