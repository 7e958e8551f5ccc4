package listen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"

	"aura/internal/assistant"
)

var upgrader = ws.Upgrader{}

// cameraServer fakes a camera daemon: every connection receives the queued
// frames, then stays open until the server shuts down.
func cameraServer(t *testing.T, frames ...frameEnvelope) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, f := range frames {
			data, _ := json.Marshal(f)
			if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
				return
			}
		}

		// Hold the connection until the client or server goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestCameraFeedCapturesFrames(t *testing.T) {
	srv := cameraServer(t,
		frameEnvelope{Device: "door", JPEG: nil}, // empty frames are skipped
		frameEnvelope{Device: "door", JPEG: []byte{0xff, 0xd8, 0xff}},
	)

	feed, err := DialCamera(wsURL(srv))
	if err != nil {
		t.Fatalf("DialCamera() = %v", err)
	}
	defer feed.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	u, err := feed.Capture(ctx)
	if err != nil {
		t.Fatalf("Capture() = %v", err)
	}
	if u.Source != assistant.SourceVision || len(u.Frame) != 3 {
		t.Errorf("utterance = %+v, want vision frame of 3 bytes", u)
	}
}

func TestCameraFeedCloseIsSafeDuringReconnect(t *testing.T) {
	srv := cameraServer(t)

	feed, err := DialCamera(wsURL(srv))
	if err != nil {
		t.Fatalf("DialCamera() = %v", err)
	}
	feed.reconnWait = 10 * time.Millisecond

	// Kill the daemon: the next read fails and Capture starts re-dialing a
	// server that is gone.
	srv.Close()

	captured := make(chan error, 1)
	go func() {
		_, err := feed.Capture(context.Background())
		captured <- err
	}()

	// Close concurrently with the reconnect loop. Capture must observe the
	// shutdown and return instead of dialing forever.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(20 * time.Millisecond)
		feed.Close()
	}()

	select {
	case err := <-captured:
		if !errors.Is(err, ErrFeedClosed) {
			t.Fatalf("Capture() after Close = %v, want ErrFeedClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Capture still blocked after Close")
	}
	wg.Wait()
}

func TestCameraFeedRejectsNewConnAfterClose(t *testing.T) {
	srv := cameraServer(t)

	feed, err := DialCamera(wsURL(srv))
	if err != nil {
		t.Fatalf("DialCamera() = %v", err)
	}
	if err := feed.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	// A dial that finishes after Close must not leak: swap closes it and
	// reports shutdown.
	conn, _, err := ws.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial = %v", err)
	}
	if err := feed.swap(conn); !errors.Is(err, ErrFeedClosed) {
		t.Fatalf("swap after Close = %v, want ErrFeedClosed", err)
	}
	// The rejected connection was closed by swap; a write must fail.
	if err := conn.WriteMessage(ws.TextMessage, []byte("x")); err == nil {
		t.Error("connection still writable after rejected swap")
	}
}

func TestCameraFeedReconnects(t *testing.T) {
	// First connection dies immediately; the feed should re-dial and then
	// receive a frame on the second connection.
	var mu sync.Mutex
	conns := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		mu.Lock()
		conns++
		first := conns == 1
		mu.Unlock()

		if first {
			conn.WriteMessage(ws.CloseMessage,
				ws.FormatCloseMessage(ws.CloseGoingAway, "restarting"))
			conn.Close()
			return
		}

		data, _ := json.Marshal(frameEnvelope{Device: "door", JPEG: []byte{1, 2}})
		conn.WriteMessage(ws.TextMessage, data)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	feed, err := DialCamera(wsURL(srv))
	if err != nil {
		t.Fatalf("DialCamera() = %v", err)
	}
	defer feed.Close()
	feed.reconnWait = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	u, err := feed.Capture(ctx)
	if err != nil {
		t.Fatalf("Capture() across reconnect = %v", err)
	}
	if len(u.Frame) != 2 {
		t.Errorf("frame = %v, want 2 bytes", u.Frame)
	}
}
