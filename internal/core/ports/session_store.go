package ports

import (
	"context"

	"github.com/modernforum/forum/internal/core/domain"
)

// SessionStore keeps server-side sessions. Expired sessions are reported as
// domain.ErrSessionNotFound.
type SessionStore interface {
	Create(ctx context.Context, identity domain.Identity) (*domain.Session, error)
	Lookup(ctx context.Context, token string) (*domain.Session, error)
	Revoke(ctx context.Context, token string) error
}
