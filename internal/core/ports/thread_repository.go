package ports

import (
	"context"
	"time"

	"github.com/modernforum/forum/internal/core/domain"
)

type ThreadRepository interface {
	Create(ctx context.Context, thread *domain.Thread) (*domain.Thread, error)
	// FindByID returns domain.ErrThreadNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*domain.Thread, error)
	// ListRecent returns up to limit threads ordered by UpdatedAt descending.
	ListRecent(ctx context.Context, limit int) ([]domain.Thread, error)
	// Touch moves UpdatedAt forward to at. It never moves it backwards.
	Touch(ctx context.Context, id string, at time.Time) error
}
