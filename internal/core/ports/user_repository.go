package ports

import (
	"context"

	"github.com/modernforum/forum/internal/core/domain"
)

// UserRepository defines persistence for forum accounts.
type UserRepository interface {
	// Create stores a new user. A taken username yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByIDs resolves many users at once, keyed by id. Unknown ids are
	// absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
}
