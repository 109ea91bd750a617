package ports

import "github.com/modernforum/forum/internal/core/domain"

// Broadcaster pushes a freshly stored post to everyone currently viewing its
// thread. Delivery is best effort and never reports failure to the caller.
type Broadcaster interface {
	Broadcast(threadID string, payload domain.PostPayload)
}
