package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// LiveServer upgrades a request into a live thread connection.
type LiveServer interface {
	Serve(w http.ResponseWriter, r *http.Request) error
}

type LiveHandler struct {
	live LiveServer
	log  zerolog.Logger
}

func NewLiveHandler(live LiveServer, log zerolog.Logger) *LiveHandler {
	return &LiveHandler{live: live, log: log}
}

// Serve handles GET /ws. A failed upgrade has already been answered.
func (h *LiveHandler) Serve(c echo.Context) error {
	if err := h.live.Serve(c.Response(), c.Request()); err != nil {
		h.log.Debug().Err(err).Str("remote_ip", c.RealIP()).Msg("live connection refused")
	}
	return nil
}
