package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/modernforum/forum/internal/api/view"
	"github.com/modernforum/forum/internal/core/domain"
)

// errorResponse is the JSON envelope for errors that reach the top level.
type errorResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders the index page with a notice, or JSON when the client asked for it.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if wantsJSON(c.Request()) {
			_ = c.JSON(code, errorResponse{Message: msg})
			return
		}
		if rerr := c.Render(code, view.PageIndex, &view.IndexPage{Title: "Error", ErrorMsg: msg}); rerr != nil {
			log.Error().Err(rerr).Msg("render error page")
			if !c.Response().Committed {
				_ = c.String(code, msg)
			}
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	if errors.Is(err, domain.ErrThreadNotFound) {
		return http.StatusNotFound, "Thread not found"
	}

	// Echo's own errors (router 404, 405, bind failures).
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code != http.StatusInternalServerError {
		if he.Code == http.StatusNotFound {
			return http.StatusNotFound, "Page not found"
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}
