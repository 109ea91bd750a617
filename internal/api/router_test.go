package api

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/modernforum/forum/internal/api/middleware"
	"github.com/modernforum/forum/internal/core/domain"
	"github.com/modernforum/forum/internal/core/ports"
	redisstore "github.com/modernforum/forum/internal/infrastructure/db/redis"
	"github.com/modernforum/forum/internal/infrastructure/http/handlers"
	"github.com/modernforum/forum/internal/infrastructure/realtime"
)

type stubAuth struct{}

func (stubAuth) Register(_ context.Context, username, _ string) (*domain.User, error) {
	return &domain.User{ID: "u-" + username, Username: username}, nil
}

func (stubAuth) Login(_ context.Context, username, password string) (*domain.User, error) {
	if password != "secret1" {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.User{ID: "u-" + username, Username: username}, nil
}

// stubForum holds a single thread "t1" and broadcasts replies like the
// real service does after storing them.
type stubForum struct {
	broadcaster ports.Broadcaster
}

func (f *stubForum) ListRecent(context.Context) ([]domain.ThreadSummary, error) {
	return []domain.ThreadSummary{{Thread: domain.Thread{ID: "t1", Title: "Welcome", UpdatedAt: time.Now()}}}, nil
}

func (f *stubForum) GetThread(_ context.Context, id string) (*domain.ThreadDetail, error) {
	if id != "t1" {
		return nil, domain.ErrThreadNotFound
	}
	return &domain.ThreadDetail{Thread: domain.Thread{ID: "t1", Title: "Welcome", CreatedAt: time.Now()}}, nil
}

func (f *stubForum) CreateThread(_ context.Context, in ports.CreateThreadInput) (*domain.Thread, error) {
	return &domain.Thread{ID: "t2", Title: in.Title}, nil
}

func (f *stubForum) Reply(_ context.Context, in ports.ReplyInput) (*domain.PostPayload, error) {
	if in.ThreadID != "t1" {
		return nil, domain.ErrThreadNotFound
	}
	payload := domain.NewPostPayload(&domain.Post{
		ID:        "p1",
		ThreadID:  in.ThreadID,
		AuthorID:  in.Author.UserID,
		Content:   in.Content,
		CreatedAt: time.Now(),
	}, in.Author.Username)
	f.broadcaster.Broadcast(in.ThreadID, payload)
	return &payload, nil
}

type testServer struct {
	url string
	hub *realtime.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hub := realtime.NewHub(realtime.Options{}, zerolog.Nop())
	sessions := middleware.NewSessions(redisstore.NewSessionStore(rdb, time.Hour), "test-secret", time.Hour, false, zerolog.Nop())

	e := NewRouter(Deps{
		Auth:     stubAuth{},
		Forum:    &stubForum{broadcaster: hub},
		Sessions: sessions,
		Live:     hub,
		Checks:   []handlers.Check{handlers.RedisCheck(rdb)},
		Log:      zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
		srv.Close()
	})
	return &testServer{url: srv.URL, hub: hub}
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 5 * time.Second,
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestRouter_AnonymousThreadCreateRedirectsToLogin(t *testing.T) {
	ts := newTestServer(t)
	browser := newBrowser(t)

	resp, err := browser.PostForm(ts.url+"/threads", url.Values{"title": {"Hello"}})
	require.NoError(t, err)
	readBody(t, resp)

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login?next=%2Fthreads", resp.Header.Get("Location"))
}

func TestRouter_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	browser := newBrowser(t)

	resp, err := browser.PostForm(ts.url+"/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	require.NoError(t, err)
	body := readBody(t, resp)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "Invalid username or password")
}

func TestRouter_LiveReply(t *testing.T) {
	ts := newTestServer(t)

	// Bob watches thread t1 without being signed in.
	wsURL := "ws" + strings.TrimPrefix(ts.url, "http") + "/ws"
	bob, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bob.Close() })
	require.NoError(t, bob.WriteJSON(map[string]string{"event": realtime.EventJoinThread, "threadId": "t1"}))
	require.Eventually(t, func() bool { return ts.hub.RoomSize("t1") == 1 }, 2*time.Second, 10*time.Millisecond)

	// Alice signs in and replies.
	alice := newBrowser(t)
	resp, err := alice.PostForm(ts.url+"/login", url.Values{"username": {"alice"}, "password": {"secret1"}, "next": {"/threads/t1"}})
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/threads/t1", resp.Header.Get("Location"))

	req, err := http.NewRequest(http.MethodPost, ts.url+"/threads/t1/posts", strings.NewReader(`{"content":"hi <b>bob</b>"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = alice.Do(req)
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	require.Contains(t, body, `"ok":true`)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame struct {
		Event string             `json:"event"`
		Data  domain.PostPayload `json:"data"`
	}
	require.NoError(t, bob.ReadJSON(&frame))
	require.Equal(t, realtime.EventNewPost, frame.Event)
	require.Equal(t, "t1", frame.Data.ThreadID)
	require.Equal(t, "alice", frame.Data.Author.Username)

	// Logging out ends the session.
	resp, err = alice.Get(ts.url + "/logout")
	require.NoError(t, err)
	readBody(t, resp)
	resp, err = alice.Get(ts.url + "/threads/new")
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestRouter_Surfaces(t *testing.T) {
	ts := newTestServer(t)
	client := newBrowser(t)

	cases := []struct {
		path string
		code int
		want string
	}{
		{path: "/", code: http.StatusOK, want: "Welcome"},
		{path: "/threads/t1", code: http.StatusOK, want: "Log in</a> to reply"},
		{path: "/threads/missing", code: http.StatusNotFound, want: "Thread not found"},
		{path: "/no/such/page", code: http.StatusNotFound, want: "Page not found"},
		{path: "/public/style.css", code: http.StatusOK},
		{path: "/health", code: http.StatusOK, want: `"status":"ok"`},
		{path: "/health/ready", code: http.StatusOK, want: `"redis"`},
		{path: "/metrics", code: http.StatusOK, want: "requests_total"},
		{path: "/swagger/doc.json", code: http.StatusOK, want: "/threads/{id}/posts"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := client.Get(ts.url + tc.path)
			require.NoError(t, err)
			body := readBody(t, resp)
			require.Equal(t, tc.code, resp.StatusCode)
			if tc.want != "" {
				require.Contains(t, body, tc.want)
			}
		})
	}
}
