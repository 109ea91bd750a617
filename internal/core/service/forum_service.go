package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/modernforum/forum/internal/core/domain"
	"github.com/modernforum/forum/internal/core/ports"
	"github.com/modernforum/forum/internal/pkg/metrics"
	"github.com/modernforum/forum/internal/pkg/sanitize"
)

// ForumService implements the thread and post use-cases.
type ForumService struct {
	users       ports.UserRepository
	threads     ports.ThreadRepository
	posts       ports.PostRepository
	broadcaster ports.Broadcaster
	log         zerolog.Logger
	now         func() time.Time
}

func NewForumService(
	users ports.UserRepository,
	threads ports.ThreadRepository,
	posts ports.PostRepository,
	broadcaster ports.Broadcaster,
	log zerolog.Logger,
) *ForumService {
	return &ForumService{
		users:       users,
		threads:     threads,
		posts:       posts,
		broadcaster: broadcaster,
		log:         log,
		now:         time.Now,
	}
}

// ListRecent returns the most recently active threads with their author
// names and reply counts.
func (s *ForumService) ListRecent(ctx context.Context) ([]domain.ThreadSummary, error) {
	threads, err := s.threads.ListRecent(ctx, domain.RecentThreads)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	if len(threads) == 0 {
		return []domain.ThreadSummary{}, nil
	}

	authors, err := s.users.FindByIDs(ctx, lo.Uniq(lo.Map(threads, func(t domain.Thread, _ int) string {
		return t.AuthorID
	})))
	if err != nil {
		return nil, fmt.Errorf("list threads: authors: %w", err)
	}

	counts, err := s.posts.CountByThreads(ctx, lo.Map(threads, func(t domain.Thread, _ int) string {
		return t.ID
	}))
	if err != nil {
		return nil, fmt.Errorf("list threads: counts: %w", err)
	}

	return lo.Map(threads, func(t domain.Thread, _ int) domain.ThreadSummary {
		return domain.ThreadSummary{
			Thread:         t,
			AuthorUsername: usernameOf(authors, t.AuthorID),
			ReplyCount:     counts[t.ID],
		}
	}), nil
}

// GetThread loads a thread with its posts, oldest first.
func (s *ForumService) GetThread(ctx context.Context, id string) (*domain.ThreadDetail, error) {
	thread, err := s.threads.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}

	posts, err := s.posts.ListByThread(ctx, thread.ID)
	if err != nil {
		return nil, fmt.Errorf("get thread: posts: %w", err)
	}

	ids := append([]string{thread.AuthorID}, lo.Map(posts, func(p domain.Post, _ int) string {
		return p.AuthorID
	})...)
	authors, err := s.users.FindByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, fmt.Errorf("get thread: authors: %w", err)
	}

	return &domain.ThreadDetail{
		Thread:         *thread,
		AuthorUsername: usernameOf(authors, thread.AuthorID),
		Posts: lo.Map(posts, func(p domain.Post, _ int) domain.PostView {
			return domain.PostView{Post: p, AuthorUsername: usernameOf(authors, p.AuthorID)}
		}),
	}, nil
}

// CreateThread stores a thread and, when given, its opening post. If the
// thread was stored but the opening post was not, the thread is returned
// together with the error.
func (s *ForumService) CreateThread(ctx context.Context, in ports.CreateThreadInput) (*domain.Thread, error) {
	now := s.clock()
	thread, err := s.threads.Create(ctx, &domain.Thread{
		Title:     strings.TrimSpace(in.Title),
		AuthorID:  in.Author.UserID,
		Tags:      in.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	metrics.ThreadsCreatedTotal.Inc()

	if content := sanitize.Text(in.Content); content != "" {
		post, err := s.posts.Create(ctx, &domain.Post{
			ThreadID:  thread.ID,
			AuthorID:  in.Author.UserID,
			Content:   content,
			CreatedAt: s.clock(),
		})
		if err != nil {
			s.log.Error().Err(err).Str("thread_id", thread.ID).Msg("thread stored without its opening post")
			return thread, fmt.Errorf("create thread: opening post: %w", err)
		}
		if err := s.threads.Touch(ctx, thread.ID, post.CreatedAt); err != nil {
			s.log.Error().Err(err).Str("thread_id", thread.ID).Str("post_id", post.ID).Msg("opening post stored, thread not bumped")
			return thread, fmt.Errorf("create thread: bump: %w", err)
		}
		if post.CreatedAt.After(thread.UpdatedAt) {
			thread.UpdatedAt = post.CreatedAt
		}
		metrics.PostsCreatedTotal.WithLabelValues("opening").Inc()
	}

	s.log.Info().Str("thread_id", thread.ID).Str("author", in.Author.Username).Msg("thread created")
	return thread, nil
}

// Reply stores a post in an existing thread, bumps the thread and pushes the
// post to live viewers. Nothing is broadcast unless both writes succeeded.
func (s *ForumService) Reply(ctx context.Context, in ports.ReplyInput) (*domain.PostPayload, error) {
	thread, err := s.threads.FindByID(ctx, in.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("reply: %w", err)
	}

	content := sanitize.Text(in.Content)
	if content == "" {
		return nil, domain.ErrEmptyContent
	}

	post, err := s.posts.Create(ctx, &domain.Post{
		ThreadID:  thread.ID,
		AuthorID:  in.Author.UserID,
		Content:   content,
		CreatedAt: s.clock(),
	})
	if err != nil {
		return nil, fmt.Errorf("reply: store post: %w", err)
	}

	if err := s.threads.Touch(ctx, thread.ID, post.CreatedAt); err != nil {
		return nil, fmt.Errorf("reply: bump thread: %w", err)
	}
	metrics.PostsCreatedTotal.WithLabelValues("reply").Inc()

	payload := domain.NewPostPayload(post, in.Author.Username)
	s.broadcaster.Broadcast(thread.ID, payload)

	s.log.Debug().Str("thread_id", thread.ID).Str("post_id", post.ID).Msg("reply stored")
	return &payload, nil
}

// clock returns the current time at the precision MongoDB keeps.
func (s *ForumService) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func usernameOf(users map[string]*domain.User, id string) string {
	if u, ok := users[id]; ok {
		return u.Username
	}
	return ""
}
