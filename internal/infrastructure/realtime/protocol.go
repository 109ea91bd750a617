package realtime

import (
	"encoding/json"

	"github.com/modernforum/forum/internal/core/domain"
)

// Event names carried in the "event" field of every frame.
const (
	EventJoinThread  = "join-thread"
	EventLeaveThread = "leave-thread"
	EventNewPost     = "new-post"
)

// inboundMessage is a frame sent by a viewer.
type inboundMessage struct {
	Event    string `json:"event"`
	ThreadID string `json:"threadId,omitempty"`
}

// outboundMessage is a frame pushed to viewers.
type outboundMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encodeNewPost(payload domain.PostPayload) ([]byte, error) {
	return json.Marshal(outboundMessage{Event: EventNewPost, Data: payload})
}
