// Package realtime pushes new posts to the viewers of a thread over
// WebSocket connections.
//
// A connection views at most one thread at a time. Membership is kept in
// shards keyed by an FNV-1a hash of the thread id, so operations on one
// thread are serialized while different threads proceed independently.
package realtime

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/modernforum/forum/internal/core/domain"
	"github.com/modernforum/forum/internal/pkg/metrics"
)

const defaultShards = 32

type room map[*Client]struct{}

type shard struct {
	mu    sync.Mutex
	rooms map[string]room
}

// Hub owns room membership. It implements ports.Broadcaster.
type Hub struct {
	shards   []*shard
	opts     Options
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
	pumps   sync.WaitGroup
}

// NewHub builds a hub. Zero option fields take their defaults.
func NewHub(opts Options, log zerolog.Logger) *Hub {
	opts = opts.withDefaults()
	h := &Hub{
		shards: make([]*shard, opts.Shards),
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		log:     log.With().Str("component", "realtime").Logger(),
		clients: make(map[*Client]struct{}),
	}
	for i := range h.shards {
		h.shards[i] = &shard{rooms: make(map[string]room)}
	}
	return h
}

// shardFor maps a thread id deterministically to its shard.
func (h *Hub) shardFor(threadID string) *shard {
	f := fnv.New32a()
	_, _ = f.Write([]byte(threadID))
	return h.shards[f.Sum32()%uint32(len(h.shards))]
}

// attach registers a new client and reserves pumps goroutines for it in
// the WaitGroup Shutdown waits on. It fails once the hub is shutting down.
func (h *Hub) attach(c *Client, pumps int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.pumps.Add(pumps)
	h.clients[c] = struct{}{}
	metrics.LiveConnections.Inc()
	return true
}

// Join makes threadID the client's active thread, leaving the previous one.
// Joining the current thread again or passing an empty id does nothing.
func (h *Hub) Join(c *Client, threadID string) {
	if threadID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.room == threadID {
		return
	}
	if c.room != "" {
		h.removeLocked(c, c.room)
	}

	s := h.shardFor(threadID)
	s.mu.Lock()
	members, ok := s.rooms[threadID]
	if !ok {
		members = make(room)
		s.rooms[threadID] = members
		metrics.ActiveRooms.Inc()
	}
	members[c] = struct{}{}
	s.mu.Unlock()

	c.room = threadID
	h.log.Debug().Str("client", c.id).Str("thread", threadID).Msg("joined thread")
}

// Leave returns the client to the connected state without an active thread.
func (h *Hub) Leave(c *Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == "" {
		return
	}
	h.removeLocked(c, c.room)
	c.room = ""
}

// removeLocked drops c from the room. c.mu must be held.
func (h *Hub) removeLocked(c *Client, threadID string) {
	s := h.shardFor(threadID)
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[threadID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(s.rooms, threadID)
		metrics.ActiveRooms.Dec()
	}
}

// Broadcast queues payload for every client currently viewing threadID.
// Frames for one thread reach each viewer in call order. A viewer whose
// queue is full misses the frame and is disconnected.
func (h *Hub) Broadcast(threadID string, payload domain.PostPayload) {
	frame, err := encodeNewPost(payload)
	if err != nil {
		h.log.Error().Err(err).Str("thread", threadID).Msg("encode broadcast")
		return
	}

	var slow []*Client
	s := h.shardFor(threadID)
	s.mu.Lock()
	for c := range s.rooms[threadID] {
		select {
		case c.send <- frame:
			metrics.BroadcastDeliveries.WithLabelValues("queued").Inc()
		default:
			metrics.BroadcastDeliveries.WithLabelValues("dropped").Inc()
			slow = append(slow, c)
		}
	}
	s.mu.Unlock()

	for _, c := range slow {
		h.log.Debug().Str("client", c.id).Str("thread", threadID).Msg("send queue full, disconnecting viewer")
		h.Disconnect(c)
	}
}

// Disconnect removes the client from its room and closes its send queue.
// Membership is gone before the queue closes, so no broadcast can hit a
// closed queue. Calling it more than once is safe.
func (h *Hub) Disconnect(c *Client) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.room != "" {
		h.removeLocked(c, c.room)
		c.room = ""
	}
	close(c.send)
	c.mu.Unlock()

	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		metrics.LiveConnections.Dec()
	}
	h.mu.Unlock()
}

// RoomSize reports how many clients currently view threadID.
func (h *Hub) RoomSize(threadID string) int {
	s := h.shardFor(threadID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms[threadID])
}

// Clients reports the number of attached clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown disconnects every client, refuses new ones and waits for the
// connection pumps to exit or ctx to end.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Disconnect(c)
	}
	h.log.Info().Int("clients", len(clients)).Msg("realtime hub shutting down")

	done := make(chan struct{})
	go func() {
		h.pumps.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
