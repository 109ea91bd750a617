package ports

import (
	"context"

	"github.com/modernforum/forum/internal/core/domain"
)

// CreateThreadInput carries a validated new-thread form. Content is the
// optional first post and may be empty.
type CreateThreadInput struct {
	Author  domain.Identity
	Title   string
	Tags    []string
	Content string
}

// ReplyInput carries a reply submitted to an existing thread.
type ReplyInput struct {
	ThreadID string
	Author   domain.Identity
	Content  string
}

type ForumService interface {
	ListRecent(ctx context.Context) ([]domain.ThreadSummary, error)
	GetThread(ctx context.Context, id string) (*domain.ThreadDetail, error)
	// CreateThread returns a non-nil thread alongside an error when the
	// thread exists but its opening post could not be completed.
	CreateThread(ctx context.Context, in CreateThreadInput) (*domain.Thread, error)
	Reply(ctx context.Context, in ReplyInput) (*domain.PostPayload, error)
}
