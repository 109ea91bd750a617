package ports

import (
	"context"

	"github.com/modernforum/forum/internal/core/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	// ListByThread returns the thread's posts in ascending creation order.
	ListByThread(ctx context.Context, threadID string) ([]domain.Post, error)
	// CountByThreads returns the number of posts per thread id. Threads
	// without posts are absent from the result.
	CountByThreads(ctx context.Context, threadIDs []string) (map[string]int64, error)
}
