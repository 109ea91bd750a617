package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/modernforum/forum/internal/core/domain"
	"github.com/modernforum/forum/internal/core/ports"
)

type forumFixture struct {
	svc     *ForumService
	users   *memUsers
	threads *memThreads
	posts   *memPosts
	bc      *recordingBroadcaster
	clock   *fakeClock
}

func newForumFixture() *forumFixture {
	f := &forumFixture{
		users:   newMemUsers(),
		threads: newMemThreads(),
		posts:   &memPosts{},
		bc:      &recordingBroadcaster{},
		clock:   &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.svc = NewForumService(f.users, f.threads, f.posts, f.bc, zerolog.Nop())
	f.svc.now = f.clock.Now
	return f
}

func (f *forumFixture) thread(t *testing.T, author domain.Identity, title string) *domain.Thread {
	t.Helper()
	th, err := f.svc.CreateThread(context.Background(), ports.CreateThreadInput{Author: author, Title: title})
	require.NoError(t, err)
	return th
}

func TestForumService_Reply_StoresSanitizedAndBumps(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")
	bob := f.users.add("bob")
	th := f.thread(t, alice, "Hello")

	payload, err := f.svc.Reply(context.Background(), ports.ReplyInput{
		ThreadID: th.ID,
		Author:   bob,
		Content:  "  <b>hi</b> <script>alert(1)</script>there ",
	})
	require.NoError(t, err)
	require.Equal(t, "hi there", payload.Content)
	require.Equal(t, "bob", payload.Author.Username)
	require.Equal(t, th.ID, payload.ThreadID)

	stored, err := f.threads.FindByID(context.Background(), th.ID)
	require.NoError(t, err)
	require.False(t, stored.UpdatedAt.Before(payload.CreatedAt))
	require.True(t, stored.UpdatedAt.After(th.UpdatedAt))
	require.False(t, stored.UpdatedAt.Before(stored.CreatedAt))

	require.Len(t, f.posts.posts, 1)
	require.Equal(t, "hi there", f.posts.posts[0].Content)
	require.Equal(t, bob.UserID, f.posts.posts[0].AuthorID)

	require.Len(t, f.bc.calls, 1)
	require.Equal(t, th.ID, f.bc.calls[0].threadID)
	require.Equal(t, *payload, f.bc.calls[0].payload)
}

func TestForumService_Reply_UpdatedAtNeverDecreases(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")
	th := f.thread(t, alice, "Clock skew")

	_, err := f.svc.Reply(context.Background(), ports.ReplyInput{ThreadID: th.ID, Author: alice, Content: "first"})
	require.NoError(t, err)
	after, _ := f.threads.FindByID(context.Background(), th.ID)

	f.svc.now = func() time.Time { return th.CreatedAt.Add(-time.Hour) }
	_, err = f.svc.Reply(context.Background(), ports.ReplyInput{ThreadID: th.ID, Author: alice, Content: "second"})
	require.NoError(t, err)

	latest, _ := f.threads.FindByID(context.Background(), th.ID)
	require.Equal(t, after.UpdatedAt, latest.UpdatedAt)
}

func TestForumService_Reply_ThreadNotFound(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")

	_, err := f.svc.Reply(context.Background(), ports.ReplyInput{ThreadID: "missing", Author: alice, Content: "hi"})
	require.ErrorIs(t, err, domain.ErrThreadNotFound)
	require.Empty(t, f.posts.posts)
	require.Empty(t, f.bc.calls)
}

func TestForumService_Reply_EmptyAfterSanitizing(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")
	th := f.thread(t, alice, "Markup only")

	_, err := f.svc.Reply(context.Background(), ports.ReplyInput{ThreadID: th.ID, Author: alice, Content: "<img src=x>"})
	require.ErrorIs(t, err, domain.ErrEmptyContent)
	require.Empty(t, f.posts.posts)
	require.Empty(t, f.bc.calls)
}

func TestForumService_Reply_NoBroadcastWhenBumpFails(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")
	th := f.thread(t, alice, "Flaky")
	boom := errors.New("write concern timeout")
	f.threads.touchErr = boom

	_, err := f.svc.Reply(context.Background(), ports.ReplyInput{ThreadID: th.ID, Author: alice, Content: "hi"})
	require.ErrorIs(t, err, boom)
	require.Empty(t, f.bc.calls)
}

func TestForumService_Reply_NoBroadcastWhenInsertFails(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")
	th := f.thread(t, alice, "Flaky")
	boom := errors.New("insert failed")
	f.posts.createErr = boom

	_, err := f.svc.Reply(context.Background(), ports.ReplyInput{ThreadID: th.ID, Author: alice, Content: "hi"})
	require.ErrorIs(t, err, boom)
	require.Empty(t, f.bc.calls)
}

func TestForumService_ListRecent_OrderLimitAndCounts(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")
	bob := f.users.add("bob")

	var created []*domain.Thread
	for i := 0; i < 25; i++ {
		author := alice
		if i%2 == 1 {
			author = bob
		}
		created = append(created, f.thread(t, author, fmt.Sprintf("Thread %02d", i)))
	}

	// Replies move the oldest thread to the top.
	for i := 0; i < 3; i++ {
		_, err := f.svc.Reply(context.Background(), ports.ReplyInput{ThreadID: created[0].ID, Author: bob, Content: "bump"})
		require.NoError(t, err)
	}

	list, err := f.svc.ListRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, list, domain.RecentThreads)

	require.Equal(t, created[0].ID, list[0].ID)
	require.Equal(t, int64(3), list[0].ReplyCount)
	require.Equal(t, "alice", list[0].AuthorUsername)

	for i := 1; i < len(list); i++ {
		require.False(t, list[i].UpdatedAt.After(list[i-1].UpdatedAt), "listing not sorted at %d", i)
		require.Equal(t, int64(0), list[i].ReplyCount)
	}
	require.Equal(t, created[24].ID, list[1].ID)
	require.Equal(t, "alice", list[1].AuthorUsername)
	require.Equal(t, "bob", list[2].AuthorUsername)
}

func TestForumService_ListRecent_Empty(t *testing.T) {
	f := newForumFixture()

	list, err := f.svc.ListRecent(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestForumService_CreateThread_WithOpeningPost(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")

	th, err := f.svc.CreateThread(context.Background(), ports.CreateThreadInput{
		Author:  alice,
		Title:   "  Go tips  ",
		Tags:    []string{"go", "tips"},
		Content: "<p>Use <code>context</code></p>",
	})
	require.NoError(t, err)
	require.Equal(t, "Go tips", th.Title)
	require.Equal(t, []string{"go", "tips"}, th.Tags)
	require.Len(t, f.posts.posts, 1)
	require.Equal(t, "Use context", f.posts.posts[0].Content)

	stored, _ := f.threads.FindByID(context.Background(), th.ID)
	require.True(t, stored.UpdatedAt.After(stored.CreatedAt))
	require.Equal(t, stored.UpdatedAt, th.UpdatedAt)
	require.Empty(t, f.bc.calls, "opening posts have no live viewers")
}

func TestForumService_CreateThread_WithoutContent(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")

	for _, content := range []string{"", "   ", "<br>"} {
		th, err := f.svc.CreateThread(context.Background(), ports.CreateThreadInput{Author: alice, Title: "Quiet", Content: content})
		require.NoError(t, err)
		require.Equal(t, th.CreatedAt, th.UpdatedAt)
	}
	require.Empty(t, f.posts.posts)
}

func TestForumService_CreateThread_OpeningPostFailureReturnsThread(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")
	boom := errors.New("insert failed")
	f.posts.createErr = boom

	th, err := f.svc.CreateThread(context.Background(), ports.CreateThreadInput{Author: alice, Title: "Half done", Content: "first"})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, th, "the stored thread comes back so callers do not create it again")

	stored, err := f.threads.FindByID(context.Background(), th.ID)
	require.NoError(t, err)
	require.Equal(t, "Half done", stored.Title)
}

func TestForumService_CreateThread_BumpFailureReturnsThread(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")
	boom := errors.New("write concern timeout")
	f.threads.touchErr = boom

	th, err := f.svc.CreateThread(context.Background(), ports.CreateThreadInput{Author: alice, Title: "Half done", Content: "first"})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, th)
	require.Len(t, f.posts.posts, 1)
}

func TestForumService_GetThread(t *testing.T) {
	f := newForumFixture()
	alice := f.users.add("alice")
	bob := f.users.add("bob")
	th := f.thread(t, alice, "Chat")

	for i, who := range []domain.Identity{bob, alice, bob} {
		_, err := f.svc.Reply(context.Background(), ports.ReplyInput{ThreadID: th.ID, Author: who, Content: fmt.Sprint("msg ", i)})
		require.NoError(t, err)
	}

	detail, err := f.svc.GetThread(context.Background(), th.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", detail.AuthorUsername)
	require.Len(t, detail.Posts, 3)

	var got []string
	for _, p := range detail.Posts {
		got = append(got, p.AuthorUsername+":"+p.Content)
	}
	require.Equal(t, "bob:msg 0,alice:msg 1,bob:msg 2", strings.Join(got, ","))
}

func TestForumService_GetThread_NotFound(t *testing.T) {
	f := newForumFixture()

	_, err := f.svc.GetThread(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrThreadNotFound)
}
