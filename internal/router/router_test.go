package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytquery-web/internal/chat"
	"ytquery-web/internal/handlers"
	"ytquery-web/internal/middleware"
	"ytquery-web/internal/models"
	"ytquery-web/internal/websocket"
)

type stubBackend struct{}

func (stubBackend) Load(ctx context.Context, videoID string) (*models.APIResponse, error) {
	return &models.APIResponse{Message: "Transcript: " + videoID + " loaded successfully"}, nil
}

func (stubBackend) Query(ctx context.Context, videoID, question string) (*models.APIResponse, error) {
	return &models.APIResponse{Message: "reply: " + question}, nil
}

type stubMetadata struct{}

func (stubMetadata) GetVideoMetadata(ctx context.Context, videoID string) models.VideoMetadata {
	return models.VideoMetadata{VideoID: videoID, Title: "Video"}
}

var viewIDPattern = regexp.MustCompile(`const viewID = "([0-9a-f-]{36})"`)

func newTestServer(t *testing.T) (*httptest.Server, *chat.Registry) {
	t.Helper()
	return newLimitedTestServer(t, 0)
}

func newLimitedTestServer(t *testing.T, limit int) (*httptest.Server, *chat.Registry) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := chat.NewRegistry(stubBackend{}, time.Minute, log)
	limiter := middleware.NewRateLimiter(limit, time.Minute)
	t.Cleanup(limiter.Stop)

	h := New(
		handlers.NewSearchHandler(log),
		handlers.NewChatHandler(registry, stubMetadata{}, log),
		websocket.NewHub(registry, log),
		limiter,
	)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, registry
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestRouter_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_SearchToChat(t *testing.T) {
	srv, registry := newTestServer(t)
	client := noRedirectClient()

	resp, err := client.PostForm(srv.URL+"/", url.Values{"url": {"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}})
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dQw4w9WgXcQ", resp.Header.Get("Location"))

	resp, err = client.Get(srv.URL + "/dQw4w9WgXcQ")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, registry.Len())
}

func TestRouter_InvalidURLStaysOnSearch(t *testing.T) {
	srv, registry := newTestServer(t)

	resp, err := noRedirectClient().PostForm(srv.URL+"/", url.Values{"url": {"not a url"}})
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"))
	assert.Contains(t, string(body), "Invalid YouTube URL")
	assert.Equal(t, 0, registry.Len())
}

func TestRouter_RejectsMalformedVideoID(t *testing.T) {
	srv, registry := newTestServer(t)

	for _, path := range []string{"/abc", "/dQw4w9WgXcQQ", "/dQw4w9WgX.Q/state"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	assert.Equal(t, 0, registry.Len())
}

func TestRouter_ChatOverWebSocket(t *testing.T) {
	srv, registry := newTestServer(t)

	resp, err := http.Get(srv.URL + "/dQw4w9WgXcQ")
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	m := viewIDPattern.FindStringSubmatch(string(page))
	require.Len(t, m, 2, "view id not found in page")
	viewID := m[1]

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/dQw4w9WgXcQ/ws?view=" + viewID
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	readUntil := func(n int) chat.Snapshot {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			var snap chat.Snapshot
			require.NoError(t, conn.ReadJSON(&snap))
			if len(snap.Messages) >= n && !snap.Typing {
				return snap
			}
		}
	}

	snap := readUntil(1)
	assert.Equal(t, "Transcript: dQw4w9WgXcQ loaded successfully", snap.Messages[0].Text)

	resp, err = http.Post(srv.URL+"/dQw4w9WgXcQ/messages?view="+viewID, "application/json",
		strings.NewReader(`{"question":"what is it?"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	snap = readUntil(3)
	require.Len(t, snap.Messages, 3)
	assert.Equal(t, models.Message{Text: "what is it?", Sender: models.SenderUser, Order: 1}, snap.Messages[1])
	assert.Equal(t, models.Message{Text: "reply: what is it?", Sender: models.SenderAssistant, Order: 2}, snap.Messages[2])

	resp, err = http.Get(srv.URL + "/dQw4w9WgXcQ/state?view=" + viewID)
	require.NoError(t, err)
	var state chat.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	assert.Len(t, state.Messages, 3)

	// leaving the page tears the view down
	conn.Close()
	assert.Eventually(t, func() bool { return registry.Len() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func openChatPage(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp, err := http.Get(srv.URL + "/dQw4w9WgXcQ")
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	m := viewIDPattern.FindStringSubmatch(string(page))
	require.Len(t, m, 2, "view id not found in page")
	return m[1]
}

func TestRouter_ChatPageRateLimited(t *testing.T) {
	srv, registry := newLimitedTestServer(t, 1)

	openChatPage(t, srv)

	resp, err := http.Get(srv.URL + "/dQw4w9WgXcQ")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, 1, registry.Len())
}

func TestRouter_ReplacedSocketKeepsView(t *testing.T) {
	srv, registry := newTestServer(t)
	viewID := openChatPage(t, srv)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/dQw4w9WgXcQ/ws?view=" + viewID

	first, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer first.Close()

	second, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer second.Close()

	// the server drops the first socket once the second one registers
	first.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}

	assert.Never(t, func() bool { return registry.Len() == 0 }, 200*time.Millisecond, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/dQw4w9WgXcQ/messages?view="+viewID, "application/json",
		strings.NewReader(`{"question":"still there?"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	second.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var snap chat.Snapshot
		require.NoError(t, second.ReadJSON(&snap))
		if len(snap.Messages) == 3 && !snap.Typing {
			assert.Equal(t, "reply: still there?", snap.Messages[2].Text)
			break
		}
	}
}
