package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/nui-overlay/internal/journal"
	"github.com/atomicstack/nui-overlay/internal/logging"
	"github.com/atomicstack/nui-overlay/internal/testutil"
)

func TestReplayMatchesGolden(t *testing.T) {
	script, err := os.Open(testutil.Testdata(t, "replay_basic.yaml"))
	require.NoError(t, err)
	defer script.Close()

	var out bytes.Buffer
	require.NoError(t, Replay(context.Background(), script, &out, 10))
	testutil.AssertGolden(t, "replay_basic.golden", out.String())
}

func TestReplayEmptyScriptOnlyAnnouncesReady(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Replay(context.Background(), strings.NewReader(""), &out, 10))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "ready")
}

func TestReplayRejectsMalformedSteps(t *testing.T) {
	script := "messages:\n  - type: action\n  - type: ready\n"
	err := Replay(context.Background(), strings.NewReader(script), &bytes.Buffer{}, 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "step 1")
}

func TestReplayStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	script := "messages:\n  - type: ready\n"
	err := Replay(ctx, strings.NewReader(script), &bytes.Buffer{}, 10)
	require.ErrorIs(t, err, context.Canceled)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// hostStub accepts outbound posts and pushes a fixed set of frames to every
// websocket client.
func hostStub(t *testing.T, frames []string) (*httptest.Server, <-chan string) {
	t.Helper()
	posted := make(chan string, 32)
	mux := http.NewServeMux()
	mux.HandleFunc("/message", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Type string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		posted <- body.Type
		_, _ = w.Write([]byte(`"OK"`))
	})
	mux.HandleFunc("/nui", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, frame := range frames {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(frame))
		}
		_, _, _ = conn.ReadMessage()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, posted
}

func collect(t *testing.T, posted <-chan string, n int) []string {
	t.Helper()
	timeout := time.After(5 * time.Second)
	var got []string
	for len(got) < n {
		select {
		case msgType := <-posted:
			got = append(got, msgType)
		case <-timeout:
			t.Fatalf("timed out after %v", got)
		}
	}
	sort.Strings(got)
	return got
}

func TestRunHeadlessServesHost(t *testing.T) {
	logging.Configure(filepath.Join(t.TempDir(), "app.log"))
	t.Cleanup(func() { logging.Configure("") })

	srv, posted := hostStub(t, []string{
		`{"type":"button_create","payload":{"id":"a","text":"Alpha"}}`,
		`{"type":"button_create","payload":{"id":"b","text":"Beta"}}`,
		`{"type":"menu_create","payload":{"id":"main","open":true,"buttons":["a","b"]}}`,
		`{"type":"action","action":"down"}`,
	})
	journalPath := filepath.Join(t.TempDir(), "journal.db")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{
			HostURL:      srv.URL,
			Route:        "message",
			InboundURL:   "ws" + strings.TrimPrefix(srv.URL, "http") + "/nui",
			WindowLength: 5,
			Headless:     true,
			JournalPath:  journalPath,
			SendTimeout:  time.Second,
		})
	}()

	require.Equal(t, []string{"move", "open", "ready"}, collect(t, posted, 3))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	j, err := journal.Open(journalPath, logging.RunID())
	require.NoError(t, err)
	defer j.Close()
	entries, err := j.Entries(0)
	require.NoError(t, err)
	counts := map[journal.Direction]int{}
	for _, entry := range entries {
		counts[entry.Direction]++
	}
	require.Equal(t, 4, counts[journal.Inbound])
	require.Equal(t, 3, counts[journal.Outbound])
}

func TestRunRejectsBadHost(t *testing.T) {
	err := Run(context.Background(), Config{HostURL: "", Headless: true})
	require.Error(t, err)
}
