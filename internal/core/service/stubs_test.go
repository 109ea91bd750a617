package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/modernforum/forum/internal/core/domain"
)

// memUsers mirrors the MongoDB user repository: unique usernames.
type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	nextID  int
	findErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]*domain.User)}
}

func (r *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	clone := *u
	clone.ID = fmt.Sprintf("u%d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*domain.User)
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			clone := *u
			out[id] = &clone
		}
	}
	return out, nil
}

func (r *memUsers) add(username string) domain.Identity {
	u, err := r.Create(context.Background(), &domain.User{Username: username})
	if err != nil {
		panic(err)
	}
	return domain.Identity{UserID: u.ID, Username: u.Username}
}

// memThreads mirrors the MongoDB thread repository, including the $max
// semantics of Touch and the updated_at descending listing.
type memThreads struct {
	mu       sync.Mutex
	byID     map[string]*domain.Thread
	nextID   int
	touchErr error
}

func newMemThreads() *memThreads {
	return &memThreads{byID: make(map[string]*domain.Thread)}
}

func (r *memThreads) Create(_ context.Context, t *domain.Thread) (*domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone := *t
	clone.ID = fmt.Sprintf("t%03d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memThreads) FindByID(_ context.Context, id string) (*domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrThreadNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *memThreads) ListRecent(_ context.Context, limit int) ([]domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Thread, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memThreads) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.touchErr != nil {
		return r.touchErr
	}
	t, ok := r.byID[id]
	if !ok {
		return domain.ErrThreadNotFound
	}
	if at.After(t.UpdatedAt) {
		t.UpdatedAt = at
	}
	return nil
}

type memPosts struct {
	mu        sync.Mutex
	posts     []domain.Post
	createErr error
}

func (r *memPosts) Create(_ context.Context, p *domain.Post) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	clone := *p
	clone.ID = fmt.Sprintf("p%d", len(r.posts)+1)
	r.posts = append(r.posts, clone)
	out := clone
	return &out, nil
}

func (r *memPosts) ListByThread(_ context.Context, threadID string) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Post
	for _, p := range r.posts {
		if p.ThreadID == threadID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memPosts) CountByThreads(_ context.Context, threadIDs []string) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(threadIDs))
	for _, id := range threadIDs {
		want[id] = true
	}
	counts := make(map[string]int64)
	for _, p := range r.posts {
		if want[p.ThreadID] {
			counts[p.ThreadID]++
		}
	}
	return counts, nil
}

type broadcastCall struct {
	threadID string
	payload  domain.PostPayload
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (b *recordingBroadcaster) Broadcast(threadID string, payload domain.PostPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, broadcastCall{threadID: threadID, payload: payload})
}

// fakeClock returns successive instants one second apart from start.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
