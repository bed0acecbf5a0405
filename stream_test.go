package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harikaran1729/portfolio/internal/content"
	"github.com/Harikaran1729/portfolio/internal/typewriter"
)

type wireFrame struct {
	Text  string `json:"text"`
	Phase string `json:"phase"`
	Index int    `json:"index"`
}

// parseEvents decodes an SSE body of "frame" events.
func parseEvents(t *testing.T, body string) []wireFrame {
	t.Helper()

	var (
		frames []wireFrame
		event  string
	)
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			require.Equal(t, "frame", event)
			var f wireFrame
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &f))
			frames = append(frames, f)
		}
	}
	require.NoError(t, sc.Err())
	return frames
}

// frameRecorder is a flushing ResponseWriter that can be read while the
// handler is still streaming.
type frameRecorder struct {
	header http.Header

	mu   sync.Mutex
	body strings.Builder
}

func newFrameRecorder() *frameRecorder {
	return &frameRecorder{header: http.Header{}}
}

func (r *frameRecorder) Header() http.Header { return r.header }
func (r *frameRecorder) WriteHeader(int) {}
func (r *frameRecorder) Flush() {}

func (r *frameRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(b)
}

func (r *frameRecorder) frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Count(r.body.String(), "event:frame")
}

// endlessTyping keeps a stream busy until something stops it.
var endlessTyping = typewriter.Config{
	TypeDelay:   5 * time.Millisecond,
	DeleteDelay: 5 * time.Millisecond,
	PauseFull:   5 * time.Millisecond,
	PauseEmpty:  5 * time.Millisecond,
}

func phrasesPortfolio(phrases ...string) *content.Portfolio {
	p := content.Default()
	p.Hero.Phrases = phrases
	return p
}

func TestTypingStream_OnceCycle(t *testing.T) {
	ts := newTestServer(t, withPortfolio(phrasesPortfolio("A", "BC")))

	w := ts.get("/hero/typing?once=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	frames := parseEvents(t, w.Body.String())
	want := []wireFrame{
		{"", "typing", 0},
		{"A", "typing", 0},
		{"A", "paused-full", 0},
		{"", "deleting", 0},
		{"", "paused-empty", 0},
		{"", "typing", 1},
		{"B", "typing", 1},
		{"BC", "typing", 1},
		{"BC", "paused-full", 1},
		{"B", "deleting", 1},
		{"", "deleting", 1},
		{"", "paused-empty", 1},
	}
	assert.Equal(t, want, frames)
}

func TestTypingStream_VisibleTextStaysWithinPhrase(t *testing.T) {
	phrases := content.Default().Hero.Phrases
	ts := newTestServer(t)

	frames := parseEvents(t, ts.get("/hero/typing?once=1").Body.String())
	require.NotEmpty(t, frames)

	prev := wireFrame{Phase: "idle"}
	for i, f := range frames {
		cur := phrases[f.Index]
		assert.True(t, strings.HasPrefix(cur, f.Text), "frame %d: %q is not a prefix of %q", i, f.Text, cur)

		if prev.Phase == "typing" && f.Phase == "typing" && prev.Index == f.Index {
			assert.Equal(t, len(prev.Text)+1, len(f.Text), "frame %d grows by one", i)
		}
		if f.Phase == "deleting" && (prev.Phase == "deleting" || prev.Phase == "paused-full") {
			assert.Equal(t, len(prev.Text)-1, len(f.Text), "frame %d shrinks by one", i)
		}
		prev = f
	}

	// Full phrase held, then cleared, for every entry in order.
	var full []string
	for _, f := range frames {
		if f.Phase == "paused-full" {
			full = append(full, f.Text)
		}
	}
	assert.Equal(t, phrases, full)
	last := frames[len(frames)-1]
	assert.Equal(t, wireFrame{"", "paused-empty", len(phrases) - 1}, last)
}

func TestTypingStream_EmptyPhrasesSendsIdle(t *testing.T) {
	ts := newTestServer(t, withPortfolio(phrasesPortfolio()))

	w := ts.get("/hero/typing")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []wireFrame{{"", "idle", 0}}, parseEvents(t, w.Body.String()))
}

func TestTypingStream_UsesConfiguredTiming(t *testing.T) {
	ts := newTestServer(t)
	ts.s.cfg.Typing = typewriter.Config{TypeDelay: 1}

	cfg := ts.s.typingConfig()
	assert.Equal(t, content.Default().Hero.Phrases, cfg.Phrases)
	assert.EqualValues(t, 1, cfg.TypeDelay)
}

func TestTypingStream_ClientDisconnectStopsFrames(t *testing.T) {
	ts := newTestServer(t, withPortfolio(phrasesPortfolio("hello")))
	ts.s.cfg.Typing = endlessTyping

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/hero/typing", nil).WithContext(ctx)
	w := newFrameRecorder()

	done := make(chan struct{})
	go func() {
		ts.r.ServeHTTP(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return w.frames() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler kept running after the client went away")
	}
	n := w.frames()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, w.frames(), "no frames after disconnect")
}

func TestTypingStream_EndsOnShutdown(t *testing.T) {
	ts := newTestServer(t, withPortfolio(phrasesPortfolio("hello")))
	ts.s.cfg.Typing = endlessTyping

	srv := httptest.NewUnstartedServer(ts.r)
	srv.Config.RegisterOnShutdown(ts.s.closeStreams)
	srv.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/hero/typing")
	require.NoError(t, err)
	defer resp.Body.Close()

	br := bufio.NewReader(resp.Body)
	line, err := br.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "event:frame\n", line)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	require.NoError(t, srv.Config.Shutdown(ctx))
	assert.Less(t, time.Since(start), time.Second)

	// The stream ends cleanly rather than being cut off.
	_, err = io.Copy(io.Discard, br)
	assert.NoError(t, err)
}
