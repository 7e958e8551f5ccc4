package listen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"aura/internal/assistant"
)

// ErrFeedClosed is returned once the camera feed is shut down.
var ErrFeedClosed = errors.New("camera feed closed")

// frameEnvelope is the message a camera daemon sends per frame.
// JPEG bytes travel base64-encoded, which encoding/json does for []byte.
type frameEnvelope struct {
	Device string `json:"device"`
	JPEG   []byte `json:"jpeg"`
}

// CameraFeed receives frames from a camera daemon over a websocket and turns
// each one into a vision utterance. The connection is re-dialed when it drops.
// conn is swapped by the capture goroutine on reconnect while Close may run
// from another goroutine, so both go through the mutex.
type CameraFeed struct {
	mu     sync.Mutex
	conn   *ws.Conn
	closed bool

	url        string
	reconnWait time.Duration
}

func DialCamera(url string) (*CameraFeed, error) {
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial camera: %w", err)
	}

	log.Info("connected to camera feed", "url", url)
	return &CameraFeed{
		conn:       conn,
		url:        url,
		reconnWait: 2 * time.Second,
	}, nil
}

func (c *CameraFeed) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return c.conn.Close()
}

func (c *CameraFeed) current() (*ws.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrFeedClosed
	}
	return c.conn, nil
}

// swap installs a freshly dialed connection. If the feed was closed in the
// meantime the new connection is closed too, so no handle leaks on shutdown.
func (c *CameraFeed) swap(conn *ws.Conn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		conn.Close()
		return ErrFeedClosed
	}
	c.conn.Close()
	c.conn = conn
	return nil
}

// Capture blocks for the next frame.
func (c *CameraFeed) Capture(ctx context.Context) (assistant.Utterance, error) {
	for {
		select {
		case <-ctx.Done():
			return assistant.Utterance{}, ctx.Err()
		default:
		}

		conn, err := c.current()
		if err != nil {
			return assistant.Utterance{}, err
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if _, cerr := c.current(); cerr != nil {
				return assistant.Utterance{}, cerr
			}
			if wsClosed(err) {
				log.Warn("camera feed dropped, reconnecting", "url", c.url)
				if err := c.reconnect(ctx); err != nil {
					return assistant.Utterance{}, err
				}
				continue
			}
			return assistant.Utterance{}, fmt.Errorf("camera read: %w", err)
		}

		var env frameEnvelope
		if err := json.Unmarshal(msg, &env); err != nil {
			log.Warn("bad camera frame, skipping", "err", err)
			continue
		}
		if len(env.JPEG) == 0 {
			continue
		}

		return assistant.Utterance{
			Source: assistant.SourceVision,
			Frame:  env.JPEG,
			Time:   time.Now(),
		}, nil
	}
}

func (c *CameraFeed) reconnect(ctx context.Context) error {
	for {
		conn, _, err := ws.DefaultDialer.Dial(c.url, nil)
		if err == nil {
			if err := c.swap(conn); err != nil {
				return err
			}
			log.Info("camera feed reconnected")
			return nil
		}

		if _, err := c.current(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnWait):
		}
	}
}

func wsClosed(err error) bool {
	return ws.IsCloseError(err,
		ws.CloseNormalClosure,
		ws.CloseGoingAway,
		ws.CloseAbnormalClosure) || ws.IsUnexpectedCloseError(err)
}
