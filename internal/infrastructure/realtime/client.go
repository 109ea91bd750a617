package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrHubClosed is returned by Serve once Shutdown has started.
var ErrHubClosed = errors.New("realtime: hub closed")

// Client is one live connection. Its state moves from connected to joined
// (one thread at a time) and finally to closed.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	log     zerolog.Logger

	mu     sync.Mutex
	room   string
	closed bool
}

func (h *Hub) newClient(conn *websocket.Conn) *Client {
	id := uuid.NewString()
	return &Client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, h.opts.SendBuffer),
		limiter: rate.NewLimiter(rate.Every(h.opts.RateInterval), h.opts.RateBurst),
		log:     h.log.With().Str("client", id).Logger(),
	}
}

// Room returns the thread the client currently views, or "".
func (c *Client) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// Serve upgrades the request and runs the connection until either side
// closes it. It returns once the pumps are started.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return err
	}

	c := h.newClient(conn)
	if !h.attach(c, 2) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return ErrHubClosed
	}
	c.log.Debug().Str("remote", r.RemoteAddr).Msg("viewer connected")

	go func() {
		defer h.pumps.Done()
		h.writePump(c)
	}()
	go func() {
		defer h.pumps.Done()
		h.readPump(c)
	}()
	return nil
}

func (h *Hub) readPump(c *Client) {
	defer func() {
		h.Disconnect(c)
		_ = c.conn.Close()
		c.log.Debug().Msg("viewer disconnected")
	}()

	c.conn.SetReadLimit(h.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.log.Debug().Err(err).Msg("read failed")
			}
			return
		}
		if !c.limiter.Allow() {
			c.log.Debug().Msg("rate limit exceeded, frame discarded")
			continue
		}
		h.handleFrame(c, raw)
	}
}

func (h *Hub) handleFrame(c *Client, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.log.Debug().Err(err).Msg("invalid frame")
		return
	}
	switch msg.Event {
	case EventJoinThread:
		h.Join(c, msg.ThreadID)
	case EventLeaveThread:
		h.Leave(c)
	default:
		c.log.Debug().Str("event", msg.Event).Msg("unknown event ignored")
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				h.Disconnect(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Disconnect(c)
				return
			}
		}
	}
}
